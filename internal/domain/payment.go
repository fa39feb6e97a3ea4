package domain

import "encoding/json"

// PaymentWebhook is the decoded envelope of a verified provider callback.
type PaymentWebhook struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Reference extracts data.reference when the provider sent one.
func (w PaymentWebhook) Reference() string {
	var data struct {
		Reference string `json:"reference"`
	}
	if len(w.Data) == 0 {
		return ""
	}
	if err := json.Unmarshal(w.Data, &data); err != nil {
		return ""
	}
	return data.Reference
}
