package registry

import (
	"errors"
	"fmt"
	"time"

	"github.com/de-tools/gbb-board/pkg/models/domain"
)

// ErrUnknownReport is returned for report names outside the registry.
var ErrUnknownReport = errors.New("unsupported report")

// Registry holds the fixed set of Gas Bulletin Board report descriptors.
type Registry interface {
	// Get returns the descriptor for a logical report name.
	Get(name string) (domain.ReportDescriptor, error)
	// List returns all descriptors in a stable order.
	List() []domain.ReportDescriptor
}

type registry struct {
	order       []string
	descriptors map[string]domain.ReportDescriptor
}

// NewRegistry creates a registry with the supported WA bulletin board
// reports. Column aliases cover the header variants the upstream has
// published over time.
func NewRegistry() Registry {
	reports := []domain.ReportDescriptor{
		{
			Name:        "flows",
			DisplayName: "Actual Flows and Storage",
			File:        "ActualFlowStorage.csv",
			Columns: []domain.Column{
				{Name: "gasday", Aliases: []string{"gasdate", "date"}, Type: domain.ColumnTime},
				{Name: "facilityname", Aliases: []string{"facility"}, Type: domain.ColumnString},
				{Name: "demand", Aliases: []string{"consumption", "usage", "flow"}, Type: domain.ColumnNumber},
			},
			RefreshEvery: 5 * time.Minute,
		},
		{
			Name:        "nameplate",
			DisplayName: "Nameplate Rating",
			File:        "NameplateRating.csv",
			Columns: []domain.Column{
				{Name: "facilityname", Aliases: []string{"facility"}, Type: domain.ColumnString},
				{Name: "nameplaterating", Aliases: []string{"capacityquantity", "capacity", "rating"}, Type: domain.ColumnNumber},
			},
			RefreshEvery: time.Hour,
		},
		{
			Name:        "mto",
			DisplayName: "Medium Term Capacity Outlook",
			File:        "MediumTermCapacityOutlook.csv",
			Columns: []domain.Column{
				{Name: "facilityname", Aliases: []string{"facility"}, Type: domain.ColumnString},
				{Name: "gasday", Aliases: []string{"fromgasday", "gasdate", "date"}, Type: domain.ColumnTime},
				{Name: "capacity", Aliases: []string{"availablecapacity", "outlookquantity", "quantity"}, Type: domain.ColumnNumber},
			},
			RefreshEvery: 30 * time.Minute,
		},
	}

	r := &registry{descriptors: make(map[string]domain.ReportDescriptor)}
	for _, d := range reports {
		r.order = append(r.order, d.Name)
		r.descriptors[d.Name] = d
	}
	return r
}

func (r *registry) Get(name string) (domain.ReportDescriptor, error) {
	d, ok := r.descriptors[name]
	if !ok {
		return domain.ReportDescriptor{}, fmt.Errorf("%w: %s", ErrUnknownReport, name)
	}
	return d, nil
}

func (r *registry) List() []domain.ReportDescriptor {
	out := make([]domain.ReportDescriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.descriptors[name])
	}
	return out
}
