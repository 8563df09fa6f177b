package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/devlearn-backend/config"
	"github.com/vnkhanh/devlearn-backend/services"
	"github.com/vnkhanh/devlearn-backend/ws"
)

// GET /api/subjects
func GetSubjects(c *gin.Context) {
	subjects, err := services.NewSubjectStore(config.DB).List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, subjects)
}

// GET /api/subjects/:id
func GetSubjectDetail(c *gin.Context) {
	subject, err := services.NewSubjectStore(config.DB).Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, subject)
}

// GET /api/subjects/:id/navigation (id, path hoặc name)
func GetSubjectNavigation(c *gin.Context) {
	nav, err := services.NewNavigationService(config.DB).Build(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nav)
}

// POST /api/subjects
func CreateSubject(c *gin.Context) {
	var input services.SubjectInput
	if !bindJSON(c, &input) {
		return
	}

	subject, err := services.NewSubjectStore(config.DB).Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	ws.BroadcastSubjectListChanged("created", subject.ID.String())
	c.JSON(http.StatusCreated, subject)
}

// PUT /api/subjects/:id
func UpdateSubject(c *gin.Context) {
	var input services.SubjectInput
	if !bindJSON(c, &input) {
		return
	}

	subject, err := services.NewSubjectStore(config.DB).Update(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}

	ws.BroadcastSubjectListChanged("updated", subject.ID.String())
	c.JSON(http.StatusOK, subject)
}

// DELETE /api/subjects/:id
func DeleteSubject(c *gin.Context) {
	id := c.Param("id")
	if err := services.NewSubjectStore(config.DB).Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	ws.BroadcastSubjectListChanged("deleted", id)
	c.JSON(http.StatusOK, gin.H{"message": "Subject removed"})
}
