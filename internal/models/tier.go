package models

// TierSpec is one band of the hearts-to-tier threshold table.
type TierSpec struct {
	Name         string `json:"name"`
	MinHearts    int    `json:"min_hearts"`
	DisplayColor int    `json:"display_color"`
}
