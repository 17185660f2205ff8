package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) ListCurrencies(c *gin.Context) {
	currencies, err := s.referenceRepo.ListCurrencies(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": currencies})
}

func (s *Server) ListCountries(c *gin.Context) {
	countries, err := s.referenceRepo.ListCountries(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": countries})
}
