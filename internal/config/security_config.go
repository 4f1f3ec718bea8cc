package config

type SecurityLevel int

const (
	SecurityPublic        SecurityLevel = iota // No authentication
	SecurityOptional                           // Token used when present, anonymous otherwise
	SecurityAuthenticated                      // Valid access token required
	SecurityAdmin                              // ADMIN or SUPER_ADMIN token required
)

func (l SecurityLevel) String() string {
	switch l {
	case SecurityPublic:
		return "public"
	case SecurityOptional:
		return "optional"
	case SecurityAuthenticated:
		return "authenticated"
	case SecurityAdmin:
		return "admin"
	}
	return "unknown"
}

// RouteSecurityConfig maps mux route names to their required security level
var RouteSecurityConfig = map[string]SecurityLevel{
	// Health - Public
	"Health": SecurityPublic,

	// Auth - Public
	"Register": SecurityPublic,
	"Login":    SecurityPublic,

	// Auth / profile - Authenticated
	"Dashboard":      SecurityAuthenticated,
	"Me":             SecurityAuthenticated,
	"UpdateProfile":  SecurityAuthenticated,
	"ChangePassword": SecurityAuthenticated,

	// Membership - Authenticated
	"MembershipStatus":     SecurityAuthenticated,
	"MyPayments":           SecurityAuthenticated,
	"SubmitOfflinePayment": SecurityAuthenticated,
	"CreateOrder":          SecurityAuthenticated,
	"VerifyPayment":        SecurityAuthenticated,
	"UploadPaymentProof":   SecurityAuthenticated,
	"DownloadPaymentProof": SecurityAuthenticated,
	"GetMember":            SecurityAuthenticated,

	// Activities
	"ListActivities": SecurityPublic,
	"GetActivity":    SecurityPublic,
	"CreateActivity": SecurityAuthenticated,
	"UpdateActivity": SecurityAuthenticated,
	"JoinActivity":   SecurityAuthenticated,
	"DeleteActivity": SecurityAuthenticated,

	// Bulletin
	"ListAnnouncements": SecurityPublic,
	"ListResources":     SecurityOptional,

	// Admin
	"ListMembers":         SecurityAdmin,
	"CreateMember":        SecurityAdmin,
	"ApproveRegistration": SecurityAdmin,
	"RejectRegistration":  SecurityAdmin,
	"ListPayments":        SecurityAdmin,
	"RecordPayment":       SecurityAdmin,
	"ApprovePayment":      SecurityAdmin,
	"RejectPayment":       SecurityAdmin,
	"RevenueReport":       SecurityAdmin,
	"ActivityReport":      SecurityAdmin,
	"CreateAnnouncement":  SecurityAdmin,
	"CreateResource":      SecurityAdmin,
}

// GetSecurityLevel returns the security level for a given route name
func GetSecurityLevel(route string) SecurityLevel {
	if level, exists := RouteSecurityConfig[route]; exists {
		return level
	}
	// Default to highest security for unknown routes
	return SecurityAdmin
}
