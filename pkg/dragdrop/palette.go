package dragdrop

import (
	"github.com/dukex/flowstudio/pkg/models"
	"github.com/dukex/flowstudio/pkg/registry"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Entry is one draggable palette item.
type Entry struct {
	Payload

	Group       string `json:"group"`
	Description string `json:"description,omitempty"`
}

// Palette lists the structural variants followed by every plugin of the catalog.
func Palette(catalog registry.Catalog) []Entry {
	titleCaser := cases.Title(language.English)

	entries := []Entry{}

	for _, variant := range []models.Variant{
		models.VariantInput,
		models.VariantOutput,
		models.VariantErrorHandler,
		models.VariantFinally,
		models.VariantNote,
	} {
		capabilities := registry.MustLookup(variant)
		entries = append(entries, Entry{
			Payload: Payload{
				VariantType: string(variant),
				Label:       titleCaser.String(capabilities.DisplayName),
			},
			Group: "Flow",
		})
	}

	if catalog == nil {
		return entries
	}

	for _, metadata := range catalog.List() {
		variant, group := models.VariantTask, "Tasks"
		if metadata.Trigger {
			variant, group = models.VariantTrigger, "Triggers"
		}

		entries = append(entries, Entry{
			Payload: Payload{
				VariantType: string(variant),
				Label:       metadata.DisplayName,
				PluginType:  metadata.Type,
			},
			Group:       group,
			Description: metadata.Description,
		})
	}

	return entries
}
