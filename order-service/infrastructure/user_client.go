package infrastructure

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/partsnet/order-system/order-service/application"
)

// HTTPUserClient implements application.UserClient against the user service
// REST API.
type HTTPUserClient struct {
	*collaboratorClient
}

// NewHTTPUserClient creates a new HTTPUserClient
func NewHTTPUserClient(cfg CollaboratorConfig, logger *zap.Logger) *HTTPUserClient {
	return &HTTPUserClient{
		collaboratorClient: newCollaboratorClient("user", cfg, logger),
	}
}

// GetMember fetches one member account. Returns (nil, nil) when the member
// does not exist.
func (c *HTTPUserClient) GetMember(ctx context.Context, memberID int64) (*application.MemberInfo, error) {
	var member application.MemberInfo
	err := c.getJSON(ctx, "/api/v1/members/"+strconv.FormatInt(memberID, 10), &member)
	if err == errNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}
