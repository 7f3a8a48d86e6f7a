package validate

import "regexp"

var emailPattern = regexp.MustCompile(`^[\w\-.]+@([\w-]+\.)+[\w-]{2,4}$`)

// Field names shared between the pipelines and the handlers reading the
// sanitized values.
const (
	FieldFullName    = "fullName"
	FieldEmail       = "email"
	FieldPassword    = "password"
	FieldTitle       = "title"
	FieldOverview    = "overview"
	FieldText        = "text"
	FieldIsPublished = "isPublished"
)

func fullNameField() *Field {
	return NewField(FieldFullName).
		Trim().
		Required("must include name").
		MaxLen(30, "name must be less than 30 chars").
		Escape()
}

func emailField() *Field {
	return NewField(FieldEmail).
		Trim().
		Required("must include email").
		Matches(emailPattern, "email must be in expected format")
}

// passwordField escapes before length checks and before the caller hashes,
// matching the long-standing submission format: a password containing
// escapable characters is stored and checked in its escaped form.
func passwordField() *Field {
	return NewField(FieldPassword).
		Required("must include password").
		MinLen(6, "password must be at least 6 chars long").
		MaxLen(30, "password must be less than 30 chars").
		Escape()
}

// SignUp validates new-account submissions.
func SignUp() *Pipeline {
	return New(fullNameField(), emailField(), passwordField())
}

// LogIn validates login submissions.
func LogIn() *Pipeline {
	return New(emailField(), passwordField())
}

// Post validates post create/update submissions.
func Post() *Pipeline {
	return New(
		NewField(FieldTitle).Trim().Required("must include title"),
		NewField(FieldOverview).Trim().Required("must include overview"),
		NewField(FieldText).Trim().Required("must include text"),
		NewBoolField(FieldIsPublished,
			"must choose publication status",
			"publication status must either be true or false"),
	)
}

// Comment validates comment create/update submissions.
func Comment() *Pipeline {
	return New(NewField(FieldText).Trim().Required("must include text"))
}
