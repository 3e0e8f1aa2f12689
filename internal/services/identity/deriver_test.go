package identity

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/suite"

	"github.com/cwmc/portable-launcher/internal/model"
	"github.com/cwmc/portable-launcher/internal/testutil"
)

type DeriverSuite struct {
	suite.Suite
	deriver *Deriver
}

func TestDeriverSuite(t *testing.T) {
	suite.Run(t, new(DeriverSuite))
}

func (s *DeriverSuite) SetupTest() {
	s.deriver = NewDeriver(testutil.NopLogger())
}

func (s *DeriverSuite) claims(name, email, oid string) model.Claims {
	return model.Claims{DisplayName: name, Email: email, StableID: oid}
}

// Derive tests

func (s *DeriverSuite) TestDeriveFromTwoSegments() {
	id, err := s.deriver.Derive(s.claims("Kovács Anna", "anna.kovacs@x.com", "abc123"))
	s.Require().NoError(err)

	s.Equal("AnnaKovacs97", id.Username)
	s.Equal("Kovács Anna", id.DisplayName)
	s.Equal("anna.kovacs", id.EmailLocalPart)
	s.Equal("abc123", id.StableID)
}

func (s *DeriverSuite) TestDeriveIsDeterministic() {
	claims := s.claims("Kovács Anna", "anna.kovacs@x.com", "abc123")

	first, err := s.deriver.Derive(claims)
	s.Require().NoError(err)
	second, err := s.deriver.Derive(claims)
	s.Require().NoError(err)

	s.Equal(first.Username, second.Username)
}

func (s *DeriverSuite) TestDeriveCapitalizesSegments() {
	id, err := s.deriver.Derive(s.claims("Anna", "ANNA.kOVACS@x.com", "abc"))
	s.Require().NoError(err)
	s.Equal("AnnaKovacs97", id.Username)
}

func (s *DeriverSuite) TestDeriveFallsBackWhenTooLong() {
	id, err := s.deriver.Derive(s.claims("Max", "maximilian.schwarzenegger@x.com", "ab"))
	s.Require().NoError(err)
	s.Equal("Maximilian9798", id.Username)
}

func (s *DeriverSuite) TestDeriveTruncatesOverlongFirstSegment() {
	id, err := s.deriver.Derive(s.claims("Bart", "bartholomewalexander.x@x.com", "ab"))
	s.Require().NoError(err)
	s.Equal("Bartholomewa9798", id.Username)
	s.Equal(model.MaxUsernameLength, utf8.RuneCountInString(id.Username))
}

func (s *DeriverSuite) TestDeriveStripsHyphens() {
	id, err := s.deriver.Derive(s.claims("Anna Maria", "anna-maria.kovacs@x.com", "abc"))
	s.Require().NoError(err)
	s.Equal("Annamaria9798", id.Username)
}

func (s *DeriverSuite) TestDeriveHyphenDoesNotStartNewWord() {
	names := map[string]string{
		"jean-luc.picard": "JeanlucPicard97",
		"mary-jo.li":      "MaryjoLi97",
		"JEAN-LUC.PICARD": "JeanlucPicard97",
	}
	for localPart, want := range names {
		username, err := DeriveUsername(localPart, "abc")
		s.Require().NoError(err, localPart)
		s.Equal(want, username, localPart)
	}
}

func (s *DeriverSuite) TestDeriveFoldsDiacritics() {
	id, err := s.deriver.Derive(s.claims("Kovács Anna", "kovács.anna@x.com", "a"))
	s.Require().NoError(err)
	s.Equal("KovacsAnna97", id.Username)
}

func (s *DeriverSuite) TestDeriveSingleSegment() {
	id, err := s.deriver.Derive(s.claims("Anna", "anna@x.com", "abc"))
	s.Require().NoError(err)
	s.Equal("Anna97", id.Username)
}

func (s *DeriverSuite) TestDeriveUsesCodePointOfFirstIDChar() {
	id, err := s.deriver.Derive(s.claims("Anna", "anna.kovacs@x.com", "1bc"))
	s.Require().NoError(err)
	s.Equal("AnnaKovacs49", id.Username)
}

func (s *DeriverSuite) TestDeriveNeverExceedsMaxLength() {
	emails := []string{
		"a.b@x.com",
		"anna.kovacs@x.com",
		"verylongfirstname.verylonglastname@x.com",
		"x.supercalifragilisticexpialidocious@x.com",
		"supercalifragilisticexpialidocious@x.com",
		"jo.li.extra.segments@x.com",
	}
	for _, email := range emails {
		id, err := s.deriver.Derive(s.claims("Someone", email, "f00d-beef"))
		s.Require().NoError(err, email)
		s.LessOrEqual(utf8.RuneCountInString(id.Username), model.MaxUsernameLength, email)
	}
}

func (s *DeriverSuite) TestDeriveFailsWithoutDisplayName() {
	_, err := s.deriver.Derive(s.claims("  ", "anna.kovacs@x.com", "abc"))
	s.ErrorIs(err, model.ErrIdentityClaimsIncomplete)
}

func (s *DeriverSuite) TestDeriveFailsWithoutEmailDomain() {
	_, err := s.deriver.Derive(s.claims("Anna", "anna.kovacs", "abc"))
	s.ErrorIs(err, model.ErrIdentityClaimsIncomplete)
}

func (s *DeriverSuite) TestDeriveFailsWithEmptyLocalPart() {
	_, err := s.deriver.Derive(s.claims("Anna", "@x.com", "abc"))
	s.ErrorIs(err, model.ErrIdentityClaimsIncomplete)
}

func (s *DeriverSuite) TestDeriveFailsWithOnlySeparators() {
	_, err := s.deriver.Derive(s.claims("Anna", "..@x.com", "abc"))
	s.ErrorIs(err, model.ErrIdentityClaimsIncomplete)
}

func (s *DeriverSuite) TestDeriveFailsWithoutStableID() {
	_, err := s.deriver.Derive(s.claims("Anna", "anna.kovacs@x.com", ""))
	s.ErrorIs(err, model.ErrIdentityClaimsIncomplete)
}

func (s *DeriverSuite) TestDeriveRejectsCharsOutsideClientCharset() {
	_, err := s.deriver.Derive(s.claims("Pat", "pat.o'neil@x.com", "abc"))
	s.ErrorIs(err, model.ErrIdentityClaimsIncomplete)
}
