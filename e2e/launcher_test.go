package e2e_test

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/suite"

	"github.com/cwmc/portable-launcher/internal/cli"
	"github.com/cwmc/portable-launcher/internal/dirserver"
	"github.com/cwmc/portable-launcher/internal/factory"
	"github.com/cwmc/portable-launcher/internal/testutil"
)

// LauncherSuite runs the launcher against a real directory server
type LauncherSuite struct {
	suite.Suite
	app     *factory.TestApp
	server  *httptest.Server
	content string
	root    string
	stdout  bytes.Buffer
	stderr  bytes.Buffer
}

func TestLauncherSuite(t *testing.T) {
	suite.Run(t, new(LauncherSuite))
}

func (s *LauncherSuite) SetupTest() {
	s.app = factory.NewTestApp()
	s.content = s.T().TempDir()
	s.root = s.T().TempDir()
	s.stdout.Reset()
	s.stderr.Reset()
	s.T().Setenv("CWMC_TEAM", "")
	s.T().Setenv("CWMC_LANG", "")

	cfg := dirserver.DefaultConfig()
	cfg.ContentDir = s.content
	s.server = httptest.NewServer(dirserver.NewHandler(s.app.App, cfg, testutil.NopLogger()))

	s.publish(`{"teams": [
		// registered at the door
		{"name": "Red (1)", "members": ["Kovács Anna"], "server_port": 25566},
		{"name": "Blue (2)", "members": [], "server_port": 25567},
	]}`, `{"useModpack": true, "wipeOnStart": false, "modpackUrl": "packs/spring.zip"}`)
	s.writePack("packs/spring.zip", map[string]string{
		"manifest.json":          `{"name": "spring"}`,
		".minecraft/mods/a.jar":  "jar-a",
		".minecraft/options.txt": "lang:hu_hu",
	})
}

func (s *LauncherSuite) TearDownTest() {
	s.server.Close()
}

func (s *LauncherSuite) publish(teams, config string) {
	ctx := context.Background()
	if teams != "" {
		_, err := s.app.RosterService.PutTeams(ctx, []byte(teams), factory.TestAdminUsername)
		s.Require().NoError(err)
	}
	if config != "" {
		_, err := s.app.RosterService.PutConfig(ctx, []byte(config), factory.TestAdminUsername)
		s.Require().NoError(err)
	}
}

func (s *LauncherSuite) writePack(name string, files map[string]string) {
	path := filepath.Join(s.content, filepath.FromSlash(name))
	s.Require().NoError(os.MkdirAll(filepath.Dir(path), 0o755))

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for fileName, body := range files {
		w, err := zw.Create(fileName)
		s.Require().NoError(err)
		_, err = w.Write([]byte(body))
		s.Require().NoError(err)
	}
	s.Require().NoError(zw.Close())
	s.Require().NoError(os.WriteFile(path, buf.Bytes(), 0o644))
}

func (s *LauncherSuite) instance() string {
	return filepath.Join(s.root, "appdata", cli.InstanceDirName)
}

func (s *LauncherSuite) launch(name string, extra ...string) int {
	args := []string{
		"--master", s.server.URL,
		"--data-dir", filepath.Join(s.root, "appdata"),
		"--temp-dir", filepath.Join(s.root, "tmp"),
		"--name", name,
		"--email", "player@school.example",
		"--oid", "97b3f1d2-5c1e-4e8a-9a44-0c3f1b2a7e55",
		"--dry-run",
		"--lang", "en",
	}
	return cli.Run(context.Background(), append(args, extra...), cli.Streams{
		In:  strings.NewReader(""),
		Out: &s.stdout,
		Err: &s.stderr,
	})
}

func (s *LauncherSuite) TestFirstRunInstallsPack() {
	code := s.launch("Kovács Anna")
	s.Require().Equal(cli.ExitOK, code, s.stdout.String()+s.stderr.String())

	s.FileExists(filepath.Join(s.instance(), "mods", "a.jar"))
	s.FileExists(filepath.Join(s.instance(), "options.txt"))
	s.NoFileExists(filepath.Join(s.instance(), "manifest.json"))

	out := s.stdout.String()
	s.Contains(out, "Your team: Red (1)")
	s.Contains(out, "-p 25566")
}

func (s *LauncherSuite) TestSecondRunKeepsInstance() {
	s.Require().Equal(cli.ExitOK, s.launch("Kovács Anna"))
	marker := filepath.Join(s.instance(), "saves", "world.dat")
	s.Require().NoError(os.MkdirAll(filepath.Dir(marker), 0o755))
	s.Require().NoError(os.WriteFile(marker, []byte("progress"), 0o644))

	s.Require().NoError(os.Remove(filepath.Join(s.content, "packs", "spring.zip")))
	s.Require().Equal(cli.ExitOK, s.launch("Kovács Anna"), s.stdout.String())
	s.FileExists(marker)
}

func (s *LauncherSuite) TestWipeOnStartReinstalls() {
	s.Require().Equal(cli.ExitOK, s.launch("Kovács Anna"))
	marker := filepath.Join(s.instance(), "stale.txt")
	s.Require().NoError(os.WriteFile(marker, []byte("old"), 0o644))

	s.publish("", `{"useModpack": true, "wipeOnStart": true, "modpackUrl": "packs/spring.zip"}`)
	s.Require().Equal(cli.ExitOK, s.launch("Kovács Anna"), s.stdout.String())

	s.NoFileExists(marker)
	s.FileExists(filepath.Join(s.instance(), "mods", "a.jar"))
}

func (s *LauncherSuite) TestUnlistedPlayerUsesTeamFlag() {
	s.Equal(cli.ExitTeamNotFound, s.launch("Szabó Csaba"))

	s.stdout.Reset()
	s.Require().Equal(cli.ExitOK, s.launch("Szabó Csaba", "--team", "2"), s.stdout.String())
	s.Contains(s.stdout.String(), "Your team: Blue (2)")
	s.Contains(s.stdout.String(), "-p 25567")
}

func (s *LauncherSuite) TestMissingPackFails() {
	s.Require().NoError(os.Remove(filepath.Join(s.content, "packs", "spring.zip")))

	s.Equal(cli.ExitTransfer, s.launch("Kovács Anna"))
}
