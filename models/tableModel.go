package models

type Table struct {
	TableID ID     `json:"table_id" validate:"required"`
	Name    string `json:"table_name" validate:"required"`
	QRCode  string `json:"qr_code"`
}

type TableInput struct {
	Name string `json:"table_name" binding:"required"`
}
