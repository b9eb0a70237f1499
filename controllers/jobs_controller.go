// controllers/jobs_controller.go
package controllers

import (
	"net/http"

	"hostel-backend/services"
	"hostel-backend/utils"

	"github.com/gin-gonic/gin"
)

type JobsController struct {
	Lifecycle *services.LifecycleService
}

func NewJobsController(lifecycle *services.LifecycleService) *JobsController {
	return &JobsController{Lifecycle: lifecycle}
}

// RunJob (POST /api/jobs/:name/run, admin): manual trigger for a lifecycle
// job; returns the machine-readable run summary.
func (ctrl *JobsController) RunJob(c *gin.Context) {
	var (
		result services.JobResult
		err    error
	)
	switch c.Param("name") {
	case "mark-overdue":
		result, err = ctrl.Lifecycle.MarkOverdue()
	case "accrue-late-fees":
		result, err = ctrl.Lifecycle.AccrueLateFees()
	case "cancel-unpaid-allocations":
		result, err = ctrl.Lifecycle.CancelUnpaidAllocations()
	default:
		utils.JSONError(c, http.StatusNotFound, "unknown_job", "Unknown job name.")
		return
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, result)
}
