// Package dragdrop turns palette drags and menu selections into canvas mutations.
package dragdrop

// Transfer channel keys of the palette drag payload.
const (
	KeyVariantType = "variantType"
	KeyLabel       = "label"
	KeyPluginType  = "pluginType"

	// KeyText carries reference tokens dragged from the inputs panel onto a field.
	KeyText = "text/plain"
)

// Transfer is the string-keyed data transfer of a drag gesture.
type Transfer map[string]string

// Payload is the decoded palette drag payload.
type Payload struct {
	VariantType string `json:"variantType"`
	Label       string `json:"label"`
	PluginType  string `json:"pluginType,omitempty"`
}

// Transfer encodes the payload into its transfer channels.
func (p Payload) Transfer() Transfer {
	transfer := Transfer{
		KeyVariantType: p.VariantType,
		KeyLabel:       p.Label,
	}

	if p.PluginType != "" {
		transfer[KeyPluginType] = p.PluginType
	}

	return transfer
}

// DecodePayload reads the palette channels of a transfer. ok is false when variantType is absent.
func DecodePayload(transfer Transfer) (Payload, bool) {
	variantType := transfer[KeyVariantType]
	if variantType == "" {
		return Payload{}, false
	}

	return Payload{
		VariantType: variantType,
		Label:       transfer[KeyLabel],
		PluginType:  transfer[KeyPluginType],
	}, true
}
