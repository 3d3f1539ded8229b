package azure

import (
	"context"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
)

// StaticTokenCredential adapts a caller's bearer token to azcore.TokenCredential,
// so every management API call runs with the caller's own permissions instead
// of a service identity. The token is never refreshed; it lives exactly as
// long as the request that carried it.
type StaticTokenCredential struct {
	token string
}

func NewStaticTokenCredential(token string) StaticTokenCredential {
	return StaticTokenCredential{token: token}
}

func (c StaticTokenCredential) GetToken(_ context.Context, _ policy.TokenRequestOptions) (azcore.AccessToken, error) {
	return azcore.AccessToken{
		Token: c.token,
		// The SDK only checks this for proactive refresh; the real expiry is
		// enforced upstream by the auth middleware.
		ExpiresOn: time.Now().Add(5 * time.Minute),
	}, nil
}
