package sync

import (
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/tokenkit/internal/token"
	"github.com/jmylchreest/tokenkit/pkg/plugin"
)

// ImportReport summarises an import.
type ImportReport struct {
	Imported    int
	Skipped     int
	Collections []string
	Errors      []string
}

// Importer creates tokens from a host project snapshot.
type Importer struct {
	store  *token.Store
	logger hclog.Logger
}

// NewImporter returns an importer writing into store.
func NewImporter(store *token.Store, logger hclog.Logger) *Importer {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Importer{store: store, logger: logger.Named("import")}
}

// Import walks the managed collections of snap. Missing collections are
// created with the host's modes. A variable whose full path already exists
// is skipped, so importing twice adds nothing. Per-variable failures are
// collected rather than aborting the import.
func (im *Importer) Import(snap plugin.ProjectSnapshot) ImportReport {
	var r ImportReport
	sep := im.store.Separator()

	for _, col := range snap.Collections {
		if !col.Managed {
			continue
		}
		r.Collections = append(r.Collections, col.Name)
		modes := col.ModeNames()
		if _, ok := im.store.Collection(col.Name); !ok {
			if err := im.store.AddCollection(token.Collection{Name: col.Name, Modes: modes}); err != nil {
				r.Errors = append(r.Errors, col.Name+": "+err.Error())
				continue
			}
		}

		for _, v := range snap.CollectionVariables(col.ID) {
			path, name := token.ParseFullPath(v.Name, HostSeparator)
			fullPath := token.BuildFullPath(path, name, sep)
			if _, exists := im.store.GetByPath(fullPath); exists {
				r.Skipped++
				continue
			}

			typ := TokenType(v.ResolvedType)
			d := token.Draft{
				Name:        name,
				Path:        path,
				Type:        typ,
				Collection:  col.Name,
				Description: v.Description,
				HostID:      v.ID,
				Tags:        []string{"imported"},
			}
			for _, m := range col.Modes {
				hv, ok := v.ValuesByMode[m.ID]
				if !ok {
					continue
				}
				val := ToTokenValue(hv, typ)
				if d.ModeValues == nil {
					d.ModeValues = make(map[string]token.Value, len(col.Modes))
				}
				d.ModeValues[m.Name] = val
				if d.Value.Kind == "" {
					d.Value = val
				}
			}
			if d.Value.Kind == "" {
				r.Errors = append(r.Errors, v.Name+": no values")
				continue
			}
			if !uniform(d.ModeValues, typ) {
				// Values that could not be converted keep their text form.
				d.Type = token.TypeString
				d.Value = token.StringValue(d.Value.String())
				for m, val := range d.ModeValues {
					d.ModeValues[m] = token.StringValue(val.String())
				}
			}
			if len(d.ModeValues) <= 1 {
				d.ModeValues = nil
			}

			if _, err := im.store.Create(d); err != nil {
				r.Errors = append(r.Errors, v.Name+": "+err.Error())
				continue
			}
			r.Imported++
		}
	}

	im.logger.Info("import complete", "imported", r.Imported, "skipped", r.Skipped,
		"collections", strings.Join(r.Collections, ","), "errors", len(r.Errors))
	return r
}

func uniform(values map[string]token.Value, typ token.Type) bool {
	for _, v := range values {
		if v.Kind != typ {
			return false
		}
	}
	return true
}
