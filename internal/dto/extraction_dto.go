package dto

type ExtractionDTO struct {
	Text             string `json:"text"`
	CharacterCount   int    `json:"characterCount"`
	ProcessingMethod string `json:"processingMethod"`
	Filename         string `json:"filename"`
	FileSize         int64  `json:"fileSize"`
	Pages            int    `json:"pages,omitempty"`
}
