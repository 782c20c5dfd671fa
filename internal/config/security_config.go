// config/security_config.go
package config

type SecurityLevel int

const (
	SecurityPublic SecurityLevel = iota // No authentication
	SecurityAccess                      // Access token required
)

const bundleRentalService = "/neighbortools.v1.BundleRentalService/"

// EndpointSecurityConfig maps methods to their required security level
var EndpointSecurityConfig = map[string]SecurityLevel{
	// Browsing is public
	bundleRentalService + "CheckBundleAvailability": SecurityPublic,
	bundleRentalService + "QuoteBundle":             SecurityPublic,

	// Everything touching a rental needs an access token
	bundleRentalService + "RequestBundleRental": SecurityAccess,
	bundleRentalService + "SubmitDecision":      SecurityAccess,
	bundleRentalService + "ConfirmPickup":       SecurityAccess,
	bundleRentalService + "ConfirmReturn":       SecurityAccess,
	bundleRentalService + "CancelBundleRental":  SecurityAccess,
	bundleRentalService + "GetBundleRental":     SecurityAccess,
	bundleRentalService + "ListMyBundleRentals": SecurityAccess,
}

// GetSecurityLevel returns the security level for a given method
func GetSecurityLevel(method string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[method]; exists {
		return level
	}
	// Default to highest security for unknown endpoints
	return SecurityAccess
}
