package features

import (
	"fmt"
	"strings"
)

// Profile is the borrower category. It drives which raw signals carry
// information, which one-hot flag is set, and which decision threshold
// the orchestrator applies.
type Profile string

const (
	ProfileSalaried   Profile = "salaried"
	ProfileStudent    Profile = "student"
	ProfileGig        Profile = "gig"
	ProfileShopkeeper Profile = "shopkeeper"
	ProfileRural      Profile = "rural"
)

// AllProfiles lists every supported profile, in a stable order.
func AllProfiles() []Profile {
	return []Profile{ProfileSalaried, ProfileStudent, ProfileGig, ProfileShopkeeper, ProfileRural}
}

// ParseProfile normalizes and validates a raw profile tag. Matching is
// case-insensitive and ignores surrounding whitespace. An empty tag
// defaults to salaried.
func ParseProfile(raw string) (Profile, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return ProfileSalaried, nil
	}

	switch Profile(normalized) {
	case ProfileSalaried, ProfileStudent, ProfileGig, ProfileShopkeeper, ProfileRural:
		return Profile(normalized), nil
	}
	return "", fmt.Errorf("profile_type must be one of %v, got %q", AllProfiles(), raw)
}

func (p Profile) String() string { return string(p) }
