package assistant

import (
	"context"
	"strings"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one prior transcript entry sent as context.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Request is what the widget sends when it needs an assistant reply.
type Request struct {
	Message         string         `json:"message"`
	History         []Turn         `json:"conversationHistory"`
	PropertyContext map[string]any `json:"propertyInfo,omitempty"`
	SelectedCTA     string         `json:"selectedCta,omitempty"`
	SelectedBHK     string         `json:"selectedBhk,omitempty"`
	ProjectID       string         `json:"projectId"`
	Microsite       string         `json:"microsite,omitempty"`
}

// Directive is a structured instruction carried alongside reply text.
type Directive string

const (
	DirectiveNone               Directive = ""
	DirectiveRequestLeadDetails Directive = "request_lead_details"
)

// Reply is the normalized assistant answer. Callers never need to inspect
// the raw wire shape.
type Reply struct {
	Text      string
	Directive Directive
}

// RequestsLeadDetails reports whether the reply asks for the combined form.
func (r Reply) RequestsLeadDetails() bool {
	return r.Directive == DirectiveRequestLeadDetails
}

// Gateway produces assistant replies. Any error means no reply is available.
type Gateway interface {
	Reply(ctx context.Context, req Request) (Reply, error)
}

// GatewayFunc adapts a function to Gateway.
type GatewayFunc func(ctx context.Context, req Request) (Reply, error)

func (f GatewayFunc) Reply(ctx context.Context, req Request) (Reply, error) {
	return f(ctx, req)
}

// WireResponse is the JSON body returned by the chat endpoint.
type WireResponse struct {
	Response string `json:"response"`
	Action   string `json:"action,omitempty"`
	AIUsed   bool   `json:"aiUsed"`
	Fallback bool   `json:"fallback"`
	Model    string `json:"model,omitempty"`
	Error    string `json:"error,omitempty"`
}

// NormalizeWire converts a chat endpoint response into a Reply.
func NormalizeWire(resp WireResponse) Reply {
	return Reply{
		Text:      strings.TrimSpace(resp.Response),
		Directive: parseDirective(resp.Action),
	}
}

func parseDirective(action string) Directive {
	switch strings.TrimSpace(action) {
	case "request_lead_details", "requestLeadDetails":
		return DirectiveRequestLeadDetails
	default:
		return DirectiveNone
	}
}
