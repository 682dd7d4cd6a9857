package domain

// Secrets is the opaque key/value map returned by a secret store.
// Absent keys mean no authentication.
type Secrets map[string]string

// Credentials carries authentication material for exactly one source kind.
// At most one variant is set; a Credentials with every variant nil means
// anonymous access. Credentials never outlive the invocation that decoded
// them.
type Credentials struct {
	// ObjectStore holds S3 access keys.
	ObjectStore *ObjectStoreCredentials
	// Share holds SMB NTLM credentials.
	Share *ShareCredentials
	// HTTP holds a bearer token or API key.
	HTTP *HTTPCredentials
	// VCS holds a git access token.
	VCS *VCSCredentials
}

// ObjectStoreCredentials are S3 access keys.
type ObjectStoreCredentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	// Region overrides the configured default region when set.
	Region string
}

// ShareCredentials are SMB NTLM credentials.
type ShareCredentials struct {
	Username string
	Password string
	Domain   string
}

// HTTPCredentials authenticate an HTTP request with a bearer header.
type HTTPCredentials struct {
	BearerToken string
	APIKey      string
}

// Token returns the value sent as the bearer token. The API key wins when
// both are present.
func (c *HTTPCredentials) Token() string {
	if c == nil {
		return ""
	}
	if c.APIKey != "" {
		return c.APIKey
	}
	return c.BearerToken
}

// VCSCredentials authenticate against a git host.
type VCSCredentials struct {
	Token string
}

// Secret keys recognised by DecodeCredentials.
const (
	SecretAccessKeyID     = "access_key_id"
	SecretSecretAccessKey = "secret_access_key"
	SecretSessionToken    = "session_token"
	SecretRegion          = "region"
	SecretUsername        = "username"
	SecretPassword        = "password"
	SecretDomain          = "domain"
	SecretAPIKey          = "api_key"
	SecretToken           = "token"
)

// DecodeCredentials selects the variant for kind from an opaque secret map.
// Nothing is set when the relevant keys are missing.
func DecodeCredentials(kind SourceKind, secrets Secrets) Credentials {
	var c Credentials
	if len(secrets) == 0 {
		return c
	}

	switch kind {
	case SourceObjectStore:
		if secrets[SecretAccessKeyID] != "" || secrets[SecretRegion] != "" {
			c.ObjectStore = &ObjectStoreCredentials{
				AccessKeyID:     secrets[SecretAccessKeyID],
				SecretAccessKey: secrets[SecretSecretAccessKey],
				SessionToken:    secrets[SecretSessionToken],
				Region:          secrets[SecretRegion],
			}
		}
	case SourceNetworkShare:
		if secrets[SecretUsername] != "" {
			c.Share = &ShareCredentials{
				Username: secrets[SecretUsername],
				Password: secrets[SecretPassword],
				Domain:   secrets[SecretDomain],
			}
		}
	case SourceHTTP:
		if secrets[SecretAPIKey] != "" || secrets[SecretToken] != "" {
			c.HTTP = &HTTPCredentials{
				APIKey:      secrets[SecretAPIKey],
				BearerToken: secrets[SecretToken],
			}
		}
	case SourceVersionControl:
		if secrets[SecretToken] != "" {
			c.VCS = &VCSCredentials{Token: secrets[SecretToken]}
		}
	}
	return c
}

// IsAnonymous returns true if no variant is set.
func (c Credentials) IsAnonymous() bool {
	return c.ObjectStore == nil && c.Share == nil && c.HTTP == nil && c.VCS == nil
}
