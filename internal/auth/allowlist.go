package auth

import "strings"

// AllowList holds the staff emails permitted to use staff routes.
type AllowList map[string]struct{}

// NewAllowList normalizes emails to lower case.
func NewAllowList(emails []string) AllowList {
	list := make(AllowList, len(emails))
	for _, email := range emails {
		if email = strings.ToLower(strings.TrimSpace(email)); email != "" {
			list[email] = struct{}{}
		}
	}
	return list
}

// Contains reports whether email is allowed.
func (l AllowList) Contains(email string) bool {
	_, ok := l[strings.ToLower(strings.TrimSpace(email))]
	return ok
}
