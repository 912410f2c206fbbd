package mauth

type AuthKind int8

const (
	AuthKindNone AuthKind = iota
	AuthKindBasic
	AuthKindBearer
	AuthKindAPIKey
)

func (k AuthKind) String() string {
	switch k {
	case AuthKindNone:
		return "none"
	case AuthKindBasic:
		return "basic"
	case AuthKindBearer:
		return "bearer"
	case AuthKindAPIKey:
		return "api-key"
	default:
		return "unknown"
	}
}

type APIKeyLocation int8

const (
	APIKeyLocationHeader APIKeyLocation = iota
	APIKeyLocationQuery
)

type BasicAuth struct {
	Username string
	Password string
}

type BearerAuth struct {
	Token string
}

type APIKeyAuth struct {
	Name     string
	Value    string
	Location APIKeyLocation
}

// Auth is a closed union; Kind selects which payload is active.
type Auth struct {
	Kind   AuthKind
	Basic  BasicAuth
	Bearer BearerAuth
	APIKey APIKeyAuth
}

func None() Auth {
	return Auth{Kind: AuthKindNone}
}

func Basic(username, password string) Auth {
	return Auth{Kind: AuthKindBasic, Basic: BasicAuth{Username: username, Password: password}}
}

func Bearer(token string) Auth {
	return Auth{Kind: AuthKindBearer, Bearer: BearerAuth{Token: token}}
}

func APIKey(name, value string, location APIKeyLocation) Auth {
	return Auth{Kind: AuthKindAPIKey, APIKey: APIKeyAuth{Name: name, Value: value, Location: location}}
}
