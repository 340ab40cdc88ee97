package response

import (
	"encoding/json"
	"net/http"

	"github.com/hernancr2000/products-catalog/internal/app/dto"
)

// JSON sends a JSON response.
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends an error response in the API's {"message"} shape.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, dto.MessageResponse{Message: message})
}
