package models

// HotelSummary is one entry of the hotel listing.
type HotelSummary struct {
	HotelName  string             `json:"hotel_name"`
	FaceScore  float64            `json:"face_score"`
	FaceEmoji  string             `json:"face_emoji"`
	Price      float64            `json:"price"`
	ImageURL   string             `json:"image_url"`
	Aspects    map[string]float64 `json:"aspects"`
	SubAspects map[string]float64 `json:"subaspects"`
	Rating     *float64           `json:"rating"`
}

// SimilarHotel is one recommendation returned for a queried hotel.
type SimilarHotel struct {
	HotelName  string   `json:"hotel_name"`
	Rating     *float64 `json:"rating"`
	Similarity float64  `json:"similarity"`
	ImageURL   string   `json:"image_url"`
	Price      float64  `json:"price"`
}
