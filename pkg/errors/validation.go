package errors

import (
	"regexp"
	"strings"
)

var (
	// Users and organizations: 1-39 alphanumerics or hyphens, no leading hyphen.
	ownerPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]{0,38}$`)
	// Repository names: 1-100 alphanumerics, hyphens, underscores or dots.
	repoPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,100}$`)
)

// ValidateOwner validates a user or organization name.
func ValidateOwner(owner string) error {
	if owner == "" {
		return New(ErrCodeInvalidInput, "owner is required")
	}
	if !ownerPattern.MatchString(owner) {
		return New(ErrCodeInvalidInput, "invalid owner %q: must be 1-39 alphanumeric characters or hyphens, cannot start with hyphen", owner)
	}
	return nil
}

// ValidateRepo validates a repository name. The names "." and ".." are
// rejected because they would escape the /repos/{owner}/ path.
func ValidateRepo(repo string) error {
	if repo == "" {
		return New(ErrCodeInvalidInput, "repo is required")
	}
	if repo == "." || repo == ".." || !repoPattern.MatchString(repo) {
		return New(ErrCodeInvalidInput, "invalid repo %q: must be 1-100 alphanumeric characters, hyphens, underscores, or dots", repo)
	}
	return nil
}

// ValidateUsername validates a contributor login. Logins follow the owner rules.
func ValidateUsername(username string) error {
	if username == "" {
		return New(ErrCodeInvalidInput, "username is required")
	}
	if !ownerPattern.MatchString(username) {
		return New(ErrCodeInvalidInput, "invalid username %q", username)
	}
	return nil
}

// ValidateRepoRef validates both owner and repo.
func ValidateRepoRef(owner, repo string) error {
	if err := ValidateOwner(owner); err != nil {
		return err
	}
	return ValidateRepo(repo)
}

// ParseRepoRef splits an "owner/repo" reference and validates both parts.
func ParseRepoRef(ref string) (owner, repo string, err error) {
	owner, repo, ok := strings.Cut(strings.TrimSpace(ref), "/")
	if !ok {
		return "", "", New(ErrCodeInvalidInput, "invalid repository %q: use owner/repo", ref)
	}
	repo = strings.TrimSuffix(repo, ".git")
	if err := ValidateRepoRef(owner, repo); err != nil {
		return "", "", err
	}
	return owner, repo, nil
}
