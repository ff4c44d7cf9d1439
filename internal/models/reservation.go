package models

import "time"

type Reservation struct {
	ID         int64     `json:"id"`
	GuestID    int64     `json:"guest_id"`
	PropertyID int64     `json:"property_id"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
}

type ReservationDetail struct {
	Reservation
	Property      Property `json:"property"`
	AverageRating *float64 `json:"average_rating"`
}
