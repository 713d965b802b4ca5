package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kudzaim/kiosk-commerce/internal/service"
)

// listProductsHandler returns the full catalog for the kiosk
func (s *Server) listProductsHandler(w http.ResponseWriter, r *http.Request) {
	products, err := s.productService.ListProducts(r.Context())

	if err != nil {
		s.respondWithServiceError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data:    products,
	})
}

// getProductHandler returns one product by id
func (s *Server) getProductHandler(w http.ResponseWriter, r *http.Request) {
	product, err := s.productService.GetProduct(r.Context(), mux.Vars(r)["id"])

	if err != nil {
		s.respondWithServiceError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data:    product,
	})
}

// createProductHandler adds a catalog product
func (s *Server) createProductHandler(w http.ResponseWriter, r *http.Request) {
	var payload service.ProductRequest

	if !s.decodeJSON(w, r, &payload) {
		return
	}

	product, err := s.productService.CreateProduct(r.Context(), payload)

	if err != nil {
		s.respondWithServiceError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusCreated, ApiResponse{
		Success: true,
		Data:    product,
	})
}

// updateProductHandler replaces a product's mutable fields
func (s *Server) updateProductHandler(w http.ResponseWriter, r *http.Request) {
	var payload service.ProductRequest

	if !s.decodeJSON(w, r, &payload) {
		return
	}

	product, err := s.productService.UpdateProduct(r.Context(), mux.Vars(r)["id"], payload)

	if err != nil {
		s.respondWithServiceError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data:    product,
	})
}

// deleteProductHandler removes a product
func (s *Server) deleteProductHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.productService.DeleteProduct(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.respondWithServiceError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusOK, ApiResponse{Success: true})
}
