package widgetconfig

import "context"

// PropertySource exposes stored configs to the assistant.
type PropertySource struct {
	Store Store
}

func (p PropertySource) Property(ctx context.Context, projectID string) (string, map[string]any, error) {
	cfg, err := p.Store.Get(ctx, projectID)
	if err != nil {
		return "", nil, err
	}
	return cfg.AgentName, cfg.PropertyInfo, nil
}
