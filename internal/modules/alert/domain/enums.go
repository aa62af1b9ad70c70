//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package domain

// AlertSource represents where an alert record came from
// ENUM(real,simulated)
type AlertSource string

// MediaType represents the type of an attached media item
// ENUM(image,gifv,video)
type MediaType string
