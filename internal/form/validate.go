// Package form validates the create-project form before it is submitted.
package form

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

const maxNameLength = 100

// Field names used in validation errors.
const (
	FieldName = "name"
	FieldPath = "path"
)

var (
	namePattern  = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)
	drivePattern = regexp.MustCompile(`^[a-zA-Z]:[\\/]`)
)

// FieldError is a problem with a single form field.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string { return e.Message }

// ValidationErrors collects every problem found in a form.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, "; ")
}

// Field returns the field of the first error, or "".
func (v ValidationErrors) Field() string {
	if len(v) == 0 {
		return ""
	}
	return v[0].Field
}

// Messages returns the error messages in order.
func (v ValidationErrors) Messages() []string {
	out := make([]string, 0, len(v))
	for _, e := range v {
		out = append(out, e.Message)
	}
	return out
}

// ValidateProject checks a project name and source path. It returns nil or
// a ValidationErrors value.
func ValidateProject(name, sourcePath string) error {
	var errs ValidationErrors

	name = strings.TrimSpace(name)
	switch {
	case name == "":
		errs = append(errs, FieldError{FieldName, "Project Name cannot be empty."})
	case !namePattern.MatchString(name):
		errs = append(errs, FieldError{FieldName, "Project Name can only contain letters, numbers, dots (.), underscores (_), and hyphens (-)."})
	case utf8.RuneCountInString(name) > maxNameLength:
		errs = append(errs, FieldError{FieldName, "Project Name is too long (max 100 characters)."})
	}

	sourcePath = strings.TrimSpace(sourcePath)
	switch {
	case sourcePath == "":
		errs = append(errs, FieldError{FieldPath, "Source Code Path cannot be empty."})
	case !IsAbsolute(sourcePath):
		errs = append(errs, FieldError{FieldPath, `Please provide an absolute path for the Source Code Path (e.g., /path/to/project or C:\path\to\project).`})
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// IsAbsolute reports whether p is a POSIX absolute path or starts with a
// drive letter, independent of the local OS.
func IsAbsolute(p string) bool {
	return strings.HasPrefix(p, "/") || drivePattern.MatchString(p)
}

// AsValidation extracts ValidationErrors from err.
func AsValidation(err error) (ValidationErrors, bool) {
	var v ValidationErrors
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
