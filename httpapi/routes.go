package httpapi

const (
	AuthenticateRoute = "/authenticate"
	LogoutRoute       = "/logout"

	UserParent      = "/user/"
	CliniciansRoute = UserParent + "clinicians"
	PatientsRoute   = UserParent + "patients"
	MeRoute         = UserParent + "me"

	JWKSRoute    = "/.well-known/jwks.json"
	MetricsRoute = "/metrics"
)
