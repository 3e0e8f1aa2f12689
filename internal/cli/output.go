package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/message"

	"github.com/cwmc/portable-launcher/internal/dependencies/clock"
	"github.com/cwmc/portable-launcher/internal/i18n"
	"github.com/cwmc/portable-launcher/internal/model"
	"github.com/cwmc/portable-launcher/internal/pipeline"
	"github.com/cwmc/portable-launcher/internal/services/launch"
)

// redrawInterval limits progress bar redraws
const redrawInterval = 100 * time.Millisecond

// errorMessages maps error kinds to catalog keys, checked in order
var errorMessages = []struct {
	err error
	key string
}{
	{model.ErrIdentityClaimsIncomplete, i18n.ErrorIdentity},
	{model.ErrDirectoryUnreachable, i18n.ErrorDirectory},
	{model.ErrTeamNotFound, i18n.ErrorTeam},
	{model.ErrContentPackTransferIncomplete, i18n.ErrorTransfer},
	{model.ErrContentPackExtractionFailed, i18n.ErrorExtraction},
	{model.ErrFilesystemOperationFailed, i18n.ErrorFilesystem},
	{model.ErrRuntimeLaunchFailed, i18n.ErrorRuntime},
}

// Output prints localized operator messages prefixed with [CW] and renders the
// content pack download progress. It implements pipeline.Reporter.
type Output struct {
	out         io.Writer
	printer     *message.Printer
	clock       clock.Clock
	bar         progress.Model
	prefix      lipgloss.Style
	errPrefix   lipgloss.Style
	dim         lipgloss.Style
	interactive bool
	dryRun      bool

	lastDraw   time.Time
	barVisible bool
}

// Ensure Output implements pipeline.Reporter
var _ pipeline.Reporter = (*Output)(nil)

// NewOutput creates a new Output. Progress bars are only drawn when interactive.
func NewOutput(out io.Writer, printer *message.Printer, clk clock.Clock, interactive bool) *Output {
	renderer := lipgloss.NewRenderer(out)
	return &Output{
		out:         out,
		printer:     printer,
		clock:       clk,
		bar:         progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		prefix:      renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("#2E9E5B")),
		errPrefix:   renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("#D7263D")),
		dim:         renderer.NewStyle().Faint(true),
		interactive: interactive,
	}
}

// Say prints one catalog message
func (o *Output) Say(key string, args ...any) {
	o.endBar()
	fmt.Fprintf(o.out, "%s %s\n", o.prefix.Render("[CW]:"), o.printer.Sprintf(key, args...))
}

// Fail prints the localized message for err's kind followed by the organizer notice.
// With detail set, the raw error chain is printed too.
func (o *Output) Fail(err error, detail bool) {
	o.endBar()
	key := i18n.ErrorGeneric
	for _, m := range errorMessages {
		if errors.Is(err, m.err) {
			key = m.key
			break
		}
	}
	prefix := o.errPrefix.Render("[CW]:")
	fmt.Fprintf(o.out, "%s %s\n", prefix, o.printer.Sprintf(key))
	if detail {
		fmt.Fprintf(o.out, "%s %s\n", prefix, o.dim.Render(err.Error()))
	}
	fmt.Fprintf(o.out, "%s %s\n", prefix, o.printer.Sprintf(i18n.ErrorTellOrganizer))
}

// StageStarted announces the stages that have a message of their own
func (o *Output) StageStarted(stage pipeline.Stage) {
	switch stage {
	case pipeline.StageIdentity:
		o.Say(i18n.StatusSigningIn)
	case pipeline.StageDirectory:
		o.Say(i18n.StatusFetching)
	case pipeline.StageModpack:
		o.Say(i18n.StatusDownloading)
	case pipeline.StageLaunch:
		o.Say(i18n.StatusLaunching)
	}
}

// IdentityDerived greets the player and shows the game username
func (o *Output) IdentityDerived(identity model.Identity) {
	o.Say(i18n.StatusGreeting, identity.DisplayName)
	o.Say(i18n.StatusUsername, identity.Username)
}

// TeamResolved names the team the player joins
func (o *Output) TeamResolved(resolution model.Resolution) {
	o.Say(i18n.StatusTeam, resolution.Team.Name)
}

// InstancePrepared reports whether the instance was created, wiped or kept
func (o *Output) InstancePrepared(decision model.LifecycleDecision) {
	switch decision.Action {
	case model.LifecycleCreate:
		o.Say(i18n.StatusInstanceCreated)
	case model.LifecycleWipe:
		o.Say(i18n.StatusInstanceWiped)
	default:
		o.Say(i18n.StatusInstanceKept)
	}
}

// DownloadProgress redraws the progress bar, at most once per redrawInterval
// except for the final update
func (o *Output) DownloadProgress(transferred, expected int64) {
	if !o.interactive {
		return
	}
	done := expected > 0 && transferred >= expected
	if o.barVisible && !done && o.clock.Since(o.lastDraw) < redrawInterval {
		return
	}
	o.lastDraw = o.clock.Now()
	o.barVisible = true

	if expected <= 0 {
		fmt.Fprintf(o.out, "\r%s", formatBytes(transferred))
		return
	}
	percent := float64(transferred) / float64(expected)
	fmt.Fprintf(o.out, "\r%s %s / %s", o.bar.ViewAs(percent), formatBytes(transferred), formatBytes(expected))
}

// Unpacking ends the progress bar and announces the install
func (o *Output) Unpacking() {
	o.Say(i18n.StatusInstalling)
}

// RuntimeEvent announces a started game, and the end of a dry run
func (o *Output) RuntimeEvent(event launch.Event) {
	switch event.Kind {
	case launch.EventRuntimeReady:
		o.Say(i18n.StatusReady)
		o.Say(i18n.StatusGoodGame)
	case launch.EventRuntimeExited:
		if o.dryRun {
			o.Say(i18n.StatusDryRun)
		}
	}
}

// endBar terminates the progress bar line before other output
func (o *Output) endBar() {
	if o.barVisible {
		fmt.Fprintln(o.out)
		o.barVisible = false
	}
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
