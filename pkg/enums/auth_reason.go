package enums

// AuthReason tags audit-trail rows written on account activity.
type AuthReason string

const (
	AuthReasonSignup AuthReason = "SIGNUP"
	AuthReasonLogin  AuthReason = "LOGIN"
)

// String implements fmt.Stringer.
func (a AuthReason) String() string {
	return string(a)
}
