package identity

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/cwmc/portable-launcher/internal/model"
)

// SegmentSeparator splits the local part of the login identifier into name segments
const SegmentSeparator = "."

// usernamePattern is the charset the game client accepts for offline usernames
var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,16}$`)

// Deriver turns login claims into a stable, client-visible username
type Deriver struct {
	logger *slog.Logger
}

// NewDeriver creates a new Deriver
func NewDeriver(logger *slog.Logger) *Deriver {
	return &Deriver{
		logger: logger.With(slog.String("component", "identity-deriver")),
	}
}

// Derive validates the claims and builds the participant's identity
func (d *Deriver) Derive(claims model.Claims) (model.Identity, error) {
	displayName := strings.TrimSpace(claims.DisplayName)
	stableID := strings.TrimSpace(claims.StableID)
	localPart, _, hasDomain := strings.Cut(strings.TrimSpace(claims.Email), "@")

	switch {
	case displayName == "":
		return model.Identity{}, fmt.Errorf("%w: missing display name", model.ErrIdentityClaimsIncomplete)
	case !hasDomain || localPart == "":
		return model.Identity{}, fmt.Errorf("%w: login identifier %q is not local@domain", model.ErrIdentityClaimsIncomplete, claims.Email)
	case stableID == "":
		return model.Identity{}, fmt.Errorf("%w: missing stable account id", model.ErrIdentityClaimsIncomplete)
	}

	username, err := DeriveUsername(localPart, stableID)
	if err != nil {
		return model.Identity{}, err
	}

	d.logger.Debug("derived username",
		slog.String("local_part", localPart),
		slog.String("username", username),
	)

	return model.Identity{
		DisplayName:    displayName,
		EmailLocalPart: localPart,
		StableID:       stableID,
		Username:       username,
	}, nil
}

// DeriveUsername builds the username from the login local part and the stable id.
// The result is deterministic for the same inputs but not unique across accounts.
func DeriveUsername(localPart, stableID string) (string, error) {
	segments, err := nameSegments(localPart)
	if err != nil {
		return "", err
	}

	ids := []rune(stableID)
	if len(ids) == 0 {
		return "", fmt.Errorf("%w: missing stable account id", model.ErrIdentityClaimsIncomplete)
	}
	first := codePoint(ids[0])

	username := segments[0] + first
	if len(segments) > 1 {
		username = segments[0] + segments[1] + first
	}

	if utf8.RuneCountInString(username) > model.MaxUsernameLength {
		suffix := first
		if len(ids) > 1 {
			suffix += codePoint(ids[1])
		}
		username = truncate(segments[0], model.MaxUsernameLength-len(suffix)) + suffix
	}

	username = strings.ReplaceAll(username, "-", "")

	if !usernamePattern.MatchString(username) {
		return "", fmt.Errorf("%w: derived username %q is not accepted by the game client",
			model.ErrIdentityClaimsIncomplete, username)
	}
	return username, nil
}

// nameSegments splits, folds to ASCII and capitalizes the local part
func nameSegments(localPart string) ([]string, error) {
	folded, _, err := transform.String(asciiFold(), localPart)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrIdentityClaimsIncomplete, err)
	}

	var segments []string
	for _, part := range strings.Split(folded, SegmentSeparator) {
		if part == "" {
			continue
		}
		segments = append(segments, capitalize(part))
	}
	if len(segments) == 0 {
		return nil, fmt.Errorf("%w: login identifier has no name segments", model.ErrIdentityClaimsIncomplete)
	}
	return segments, nil
}

// capitalize upper-cases the first letter and lower-cases the rest. Hyphens
// are not word breaks: "anna-maria" becomes "Anna-maria".
func capitalize(s string) string {
	first, size := utf8.DecodeRuneInString(s)
	return cases.Upper(language.Und).String(string(first)) + cases.Lower(language.Und).String(s[size:])
}

// asciiFold strips combining marks so "kovács" becomes "kovacs"
func asciiFold() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

func codePoint(r rune) string {
	return strconv.Itoa(int(r))
}

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
