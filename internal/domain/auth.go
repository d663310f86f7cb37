package domain

// SubjectType distinguishes authenticated callers and event actors.
type SubjectType string

const (
	SubjectTypeMember SubjectType = "MEMBER"
	SubjectTypeAdmin  SubjectType = "ADMIN"
	SubjectTypeBot    SubjectType = "BOT"
)
