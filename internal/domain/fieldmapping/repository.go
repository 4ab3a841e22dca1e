package fieldmapping

import "context"

// Repository reads the gateway configuration record
type Repository interface {
	Get(ctx context.Context) (Mapping, error)
}
