package widgetconfig

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/fahimkhan-git/seher-ai-chat/internal/widget"
)

var (
	ErrInvalidUpdate  = errors.New("widgetconfig: invalid update")
	ErrMissingProject = errors.New("widgetconfig: project id required")
)

// Config is the per-project widget appearance and copy.
type Config struct {
	ID               string         `json:"id"`
	ProjectID        string         `json:"projectId"`
	AgentName        string         `json:"agentName"`
	AvatarURL        string         `json:"avatarUrl"`
	PrimaryColor     string         `json:"primaryColor"`
	FollowupMessage  string         `json:"followupMessage"`
	BHKPrompt        string         `json:"bhkPrompt"`
	InventoryMessage string         `json:"inventoryMessage"`
	PhonePrompt      string         `json:"phonePrompt"`
	ThankYouMessage  string         `json:"thankYouMessage"`
	BubblePosition   string         `json:"bubblePosition"`
	AutoOpenDelayMs  int            `json:"autoOpenDelayMs"`
	WelcomeMessage   string         `json:"welcomeMessage"`
	PropertyInfo     map[string]any `json:"propertyInfo,omitempty"`
	CreatedBy        string         `json:"createdBy,omitempty"`
	UpdatedBy        string         `json:"updatedBy,omitempty"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}

// Update lists the fields a caller may change. Anything else in the request
// body is dropped during decoding.
type Update struct {
	AgentName        *string        `json:"agentName"`
	AvatarURL        *string        `json:"avatarUrl" validate:"omitempty,url"`
	PrimaryColor     *string        `json:"primaryColor" validate:"omitempty,hexcolor"`
	FollowupMessage  *string        `json:"followupMessage"`
	BHKPrompt        *string        `json:"bhkPrompt"`
	InventoryMessage *string        `json:"inventoryMessage"`
	PhonePrompt      *string        `json:"phonePrompt"`
	ThankYouMessage  *string        `json:"thankYouMessage"`
	BubblePosition   *string        `json:"bubblePosition" validate:"omitempty,oneof=bottom-right bottom-left"`
	AutoOpenDelayMs  *int           `json:"autoOpenDelayMs" validate:"omitempty,min=0"`
	WelcomeMessage   *string        `json:"welcomeMessage"`
	PropertyInfo     map[string]any `json:"propertyInfo"`
	CreatedBy        *string        `json:"createdBy"`
	UpdatedBy        *string        `json:"updatedBy"`
}

var validate = validator.New()

// Validate checks the typed constraints on the allowed fields.
func (u Update) Validate() error {
	if err := validate.Struct(u); err != nil {
		return errors.Join(ErrInvalidUpdate, err)
	}
	return nil
}

// Default returns a fresh config carrying the stock theme.
func Default(projectID string, now time.Time) *Config {
	return &Config{
		ID:               uuid.NewString(),
		ProjectID:        projectID,
		AgentName:        "Riya from Homesfy",
		AvatarURL:        "https://media.giphy.com/media/v1.Y2lkPTc5MGI3NjExNzlzZ2R4b3J2OHJ2MjFpd3RiZW5sbmxwOHVzb3RrdmNmZTh5Z25mYiZlcD12MV9naWZzX3NlYXJjaCZjdD1n/g9582DNuQppxC/giphy.gif",
		PrimaryColor:     "#6158ff",
		FollowupMessage:  "Sure… I’ll send that across right away!",
		BHKPrompt:        "Which configuration you are looking for?",
		InventoryMessage: "That’s cool… we have inventory available with us.",
		PhonePrompt:      "Please enter your mobile number...",
		ThankYouMessage:  "Thanks! Our expert will call you shortly 📞",
		BubblePosition:   "bottom-right",
		AutoOpenDelayMs:  4000,
		WelcomeMessage:   "Hi, I’m Riya from Homesfy 👋\nHow can I help you today?",
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// Apply copies the set fields of u onto c.
func (c *Config) Apply(u Update) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&c.AgentName, u.AgentName)
	set(&c.AvatarURL, u.AvatarURL)
	set(&c.PrimaryColor, u.PrimaryColor)
	set(&c.FollowupMessage, u.FollowupMessage)
	set(&c.BHKPrompt, u.BHKPrompt)
	set(&c.InventoryMessage, u.InventoryMessage)
	set(&c.PhonePrompt, u.PhonePrompt)
	set(&c.ThankYouMessage, u.ThankYouMessage)
	set(&c.BubblePosition, u.BubblePosition)
	set(&c.WelcomeMessage, u.WelcomeMessage)
	set(&c.CreatedBy, u.CreatedBy)
	set(&c.UpdatedBy, u.UpdatedBy)
	if u.AutoOpenDelayMs != nil {
		c.AutoOpenDelayMs = *u.AutoOpenDelayMs
	}
	if u.PropertyInfo != nil {
		c.PropertyInfo = u.PropertyInfo
	}
}

// Theme maps the config onto the session copy, keeping widget defaults for
// anything the config leaves blank.
func (c *Config) Theme() widget.Theme {
	return widget.Theme{
		AgentName:          c.AgentName,
		WelcomeMessage:     c.WelcomeMessage,
		CTAAcknowledgement: c.FollowupMessage,
		BHKPrompt:          c.BHKPrompt,
		InventoryMessage:   c.InventoryMessage,
		PhonePrompt:        c.PhonePrompt,
		ThankYouMessage:    c.ThankYouMessage,
	}.Merge(widget.DefaultTheme())
}
