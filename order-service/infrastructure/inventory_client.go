package infrastructure

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/partsnet/order-system/order-service/application"
)

// HTTPInventoryClient implements application.InventoryClient against the
// inventory service REST API.
type HTTPInventoryClient struct {
	*collaboratorClient
}

// NewHTTPInventoryClient creates a new HTTPInventoryClient
func NewHTTPInventoryClient(cfg CollaboratorConfig, logger *zap.Logger) *HTTPInventoryClient {
	return &HTTPInventoryClient{
		collaboratorClient: newCollaboratorClient("inventory", cfg, logger),
	}
}

// GetParts fetches the current snapshot for the given part ids. Every
// requested id must be present in the reply; a missing part is an order
// validation failure, not an outage.
func (c *HTTPInventoryClient) GetParts(ctx context.Context, partIDs []int64) (map[int64]application.PartInfo, error) {
	ids := make([]string, len(partIDs))
	for i, id := range partIDs {
		ids[i] = strconv.FormatInt(id, 10)
	}

	var parts []application.PartInfo
	err := c.getJSON(ctx, "/api/v1/parts?ids="+strings.Join(ids, ","), &parts)
	if err == errNotFound {
		return nil, fmt.Errorf("unknown parts requested: %s", strings.Join(ids, ","))
	}
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]application.PartInfo, len(parts))
	for _, part := range parts {
		byID[part.PartID] = part
	}

	for _, id := range partIDs {
		if _, ok := byID[id]; !ok {
			return nil, fmt.Errorf("unknown part %d", id)
		}
	}

	return byID, nil
}
