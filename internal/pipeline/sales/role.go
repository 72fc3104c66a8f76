package sales

import "strings"

// RoleTerm is one vocabulary entry for role classification.
type RoleTerm struct {
	Role  Role
	Terms []string // lowercase substrings
}

// DefaultRoleVocabulary is checked in order; the first role with a matching term wins.
var DefaultRoleVocabulary = []RoleTerm{
	{Role: RoleAdmin, Terms: []string{"admin", "แอดมิน"}},
	{Role: RoleTelesale, Terms: []string{"tele", "เทเล"}},
}

// ClassifyRole infers the staff role from the role hint and creator fields
// using DefaultRoleVocabulary.
func ClassifyRole(roleHint, creator string) Role {
	return ClassifyRoleWith(DefaultRoleVocabulary, roleHint, creator)
}

// ClassifyRoleWith is ClassifyRole over a custom vocabulary.
func ClassifyRoleWith(vocab []RoleTerm, roleHint, creator string) Role {
	text := strings.ToLower(roleHint + " " + creator)
	for _, entry := range vocab {
		for _, term := range entry.Terms {
			if term != "" && strings.Contains(text, strings.ToLower(term)) {
				return entry.Role
			}
		}
	}
	return RoleUnknown
}
