package response

import (
	"time"

	"github.com/cwmc/portable-launcher/internal/model"
)

// Published is the response after an admin upload is accepted
type Published struct {
	Document  string    `json:"document"`
	Revision  string    `json:"revision"`
	UpdatedAt time.Time `json:"updated_at"`
	UpdatedBy string    `json:"updated_by"`
}

// PublishedFromTeams converts a stored team roster
func PublishedFromTeams(t *model.StoredTeams) Published {
	return Published{
		Document:  model.DocumentTeams,
		Revision:  t.Revision,
		UpdatedAt: t.UpdatedAt,
		UpdatedBy: t.UpdatedBy,
	}
}

// PublishedFromConfig converts a stored launcher configuration
func PublishedFromConfig(c *model.StoredConfig) Published {
	return Published{
		Document:  model.DocumentConfig,
		Revision:  c.Revision,
		UpdatedAt: c.UpdatedAt,
		UpdatedBy: c.UpdatedBy,
	}
}

// Health is the health check response
type Health struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}
