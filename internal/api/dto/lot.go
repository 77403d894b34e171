package dto

type LotResponse struct {
	ID  string  `json:"id"`
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

type ListLotsResponse struct {
	Lots []LotResponse `json:"lots"`
}
