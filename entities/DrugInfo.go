package entities

// DrugInfoRequest is the JSON body of a text query sent to the inference backend.
type DrugInfoRequest struct {
	DrugName string `json:"drug_name"`
}

// DrugInfoResult is the parsed success payload of the inference backend.
// Response is newline-delimited text using **...** emphasis markers.
type DrugInfoResult struct {
	DrugName string `json:"drug_name"`
	Response string `json:"response"`
}

// ErrorResponse is the failure payload shared by the backend and this service.
type ErrorResponse struct {
	Error string `json:"error"`
}
