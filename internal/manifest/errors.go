package manifest

import (
	"fmt"
)

// MalformedManifestError indicates the manifest could not be parsed or a
// declared value fails structural validation.
type MalformedManifestError struct {
	Path string
	Err  error
}

func (err MalformedManifestError) Error() string {
	return fmt.Sprintf("malformed manifest %s: %v", err.Path, err.Err)
}

func (err MalformedManifestError) Unwrap() error {
	return err.Err
}

// MissingRequiredFieldError indicates a required manifest field is absent.
type MissingRequiredFieldError struct {
	Path  string
	Field string
}

func (err MissingRequiredFieldError) Error() string {
	return fmt.Sprintf("manifest %s is missing required field %q", err.Path, err.Field)
}

// InvalidWorkspaceDeclarationError indicates the manifest declares a workspace
// section that cannot be interpreted: an empty or absolute member pattern, or
// an exclude pattern that fails to compile.
type InvalidWorkspaceDeclarationError struct {
	Path   string
	Reason string
}

func (err InvalidWorkspaceDeclarationError) Error() string {
	return fmt.Sprintf("invalid workspace declaration in %s: %s", err.Path, err.Reason)
}
