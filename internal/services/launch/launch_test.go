package launch

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/cwmc/portable-launcher/internal/model"
	"github.com/cwmc/portable-launcher/internal/testutil"
)

const stableID = "97b3f1d2-5c1e-4e8a-9a44-0c3f1b2a7e55"

func testTarget() model.LaunchTarget {
	identity := model.Identity{
		DisplayName:    "Anna Kovács",
		EmailLocalPart: "anna.kovacs",
		StableID:       stableID,
		Username:       "AnnaKovacs57",
	}
	resolution := model.Resolution{
		Team:       model.Team{Name: "Red (5)", ServerPort: 25570},
		ServerPort: 25570,
		Host:       "10.0.0.5",
	}
	return Build(identity, resolution, "/data/.cwmc")
}

// Build tests

func TestBuild(t *testing.T) {
	target := testTarget()

	assert.Equal(t, "AnnaKovacs57", target.Identity.Username)
	assert.Equal(t, stableID, target.PlayerUUID)
	assert.Equal(t, "10.0.0.5", target.Host)
	assert.Equal(t, 25570, target.Port)
	assert.Equal(t, "/data/.cwmc", target.InstancePath)
	assert.Equal(t, "10.0.0.5:25570", target.Endpoint())
}

func TestPlayerUUIDNormalizesStableID(t *testing.T) {
	got := PlayerUUID(model.Identity{StableID: strings.ToUpper(stableID), Username: "Anna57"})
	assert.Equal(t, stableID, got)
}

func TestPlayerUUIDFallsBackToOfflineUUID(t *testing.T) {
	got := PlayerUUID(model.Identity{StableID: "not-a-uuid", Username: "Anna57"})

	parsed, err := uuid.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(3), parsed.Version())
	assert.Equal(t, uuid.RFC4122, parsed.Variant())
	assert.Equal(t, OfflineUUID("Anna57").String(), got)
}

func TestOfflineUUIDIsDeterministic(t *testing.T) {
	assert.Equal(t, OfflineUUID("Anna57"), OfflineUUID("Anna57"))
	assert.NotEqual(t, OfflineUUID("Anna57"), OfflineUUID("Anna58"))
}

// ExecRuntime tests

func TestExecRuntimeArgs(t *testing.T) {
	r := NewExecRuntime("", "", testutil.NopLogger())

	assert.Equal(t, []string{
		"--main-dir", "/data/.cwmc",
		"--work-dir", "/data/.cwmc",
		"start",
		"-u", "AnnaKovacs57",
		"-i", stableID,
		"-s", "10.0.0.5",
		"-p", "25570",
		DefaultGameVersion,
	}, r.Args(testTarget()))
	assert.Equal(t, DefaultCommand, r.command())
}

func TestExecRuntimeArgsCustomVersion(t *testing.T) {
	r := NewExecRuntime("/opt/portablemc", "fabric:1.20.4", testutil.NopLogger())
	args := r.Args(testTarget())

	assert.Equal(t, "fabric:1.20.4", args[len(args)-1])
	assert.Equal(t, "/opt/portablemc", r.command())
}

// TestHelperProcess stands in for the external launcher. It is not a real test.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("CWMC_HELPER_PROCESS") != "1" {
		return
	}
	args := os.Args
	for i, a := range args {
		if a == "--" {
			args = args[i+1:]
			break
		}
	}
	fmt.Println(strings.Join(args, " "))
	fmt.Fprintln(os.Stderr, "jvm loaded")
	if os.Getenv("CWMC_HELPER_FAIL") == "1" {
		os.Exit(3)
	}
	os.Exit(0)
}

type RuntimeSuite struct {
	suite.Suite
	runtime *ExecRuntime
	events  []Event
	watcher Watcher
}

func TestRuntimeSuite(t *testing.T) {
	suite.Run(t, new(RuntimeSuite))
}

func (s *RuntimeSuite) SetupTest() {
	s.runtime = NewExecRuntime(os.Args[0], "", testutil.NopLogger())
	s.runtime.Prefix = []string{"-test.run=TestHelperProcess", "--"}
	s.runtime.Env = append(os.Environ(), "CWMC_HELPER_PROCESS=1")
	s.events = nil
	s.watcher = WatcherFunc(func(e Event) {
		s.events = append(s.events, e)
	})
}

func (s *RuntimeSuite) kinds() []EventKind {
	var kinds []EventKind
	for _, e := range s.events {
		if e.Kind != EventRuntimeOutput {
			kinds = append(kinds, e.Kind)
		}
	}
	return kinds
}

func (s *RuntimeSuite) lines() []string {
	var lines []string
	for _, e := range s.events {
		if e.Kind == EventRuntimeOutput {
			lines = append(lines, e.Line)
		}
	}
	return lines
}

func (s *RuntimeSuite) TestLaunchStreamsOutput() {
	err := s.runtime.Launch(context.Background(), testTarget(), s.watcher)
	s.Require().NoError(err)

	s.Equal([]EventKind{EventRuntimeStarting, EventRuntimeReady, EventRuntimeExited}, s.kinds())
	s.Contains(s.lines(), "jvm loaded")
	s.Contains(s.lines(), strings.Join(s.runtime.Args(testTarget())[2:], " "))
	s.Equal(0, s.events[len(s.events)-1].ExitCode)
}

func (s *RuntimeSuite) TestLaunchNonZeroExit() {
	s.runtime.Env = append(s.runtime.Env, "CWMC_HELPER_FAIL=1")

	err := s.runtime.Launch(context.Background(), testTarget(), s.watcher)
	s.ErrorIs(err, model.ErrRuntimeLaunchFailed)
	s.Contains(err.Error(), "code 3")
	s.Equal(3, s.events[len(s.events)-1].ExitCode)
}

func (s *RuntimeSuite) TestLaunchMissingCommand() {
	s.runtime.Command = "cwmc-no-such-launcher"

	err := s.runtime.Launch(context.Background(), testTarget(), nil)
	s.ErrorIs(err, model.ErrRuntimeLaunchFailed)
}

func TestDryRuntime(t *testing.T) {
	var out bytes.Buffer
	exited := false
	dry := &DryRuntime{Exec: NewExecRuntime("", "", testutil.NopLogger()), Out: &out}

	err := dry.Launch(context.Background(), testTarget(), WatcherFunc(func(e Event) {
		exited = e.Kind == EventRuntimeExited
	}))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out.String(), "portablemc --main-dir /data/.cwmc"))
	assert.Contains(t, out.String(), "-s 10.0.0.5 -p 25570 fabric:1.21.1")
	assert.True(t, exited)
}
