package httpserver

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/mbelyaev/jobtrack/internal/logging"
	"github.com/mbelyaev/jobtrack/internal/models"
	"github.com/mbelyaev/jobtrack/internal/mykafka"
	"github.com/mbelyaev/jobtrack/internal/search"
	"github.com/mbelyaev/jobtrack/internal/service"
	"github.com/mbelyaev/jobtrack/internal/util"
)

type JobHTTP struct {
	Svc      *service.JobService
	Producer *mykafka.Producer
	Indexer  *search.Indexer
}

type createJobRequest struct {
	Company  string `json:"company"`
	Position string `json:"position"`
	Status   string `json:"status"`
	Notes    string `json:"notes"`
}

type updateJobRequest struct {
	Company  *string `json:"company"`
	Position *string `json:"position"`
	Status   *string `json:"status"`
	Notes    *string `json:"notes"`
}

func (h *JobHTTP) jobID(c echo.Context) (uuid.UUID, error) {
	return uuid.Parse(c.Param("id"))
}

func (h *JobHTTP) index(c echo.Context, job *models.Job) {
	if h.Indexer == nil {
		return
	}
	if err := h.Indexer.IndexJob(c.Request().Context(), job); err != nil {
		logging.FromContext(c.Request().Context()).Error("index job failed", "job_id", job.ID, "error", err)
	}
}

func (h *JobHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "jobs.create")

	userID, err := userIDFromContext(c)
	if err != nil {
		l.Warn("create_job_error", "status", 401, "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req createJobRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_job_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	job, err := h.Svc.Create(ctx, userID, service.CreateJobInput{
		Company:  req.Company,
		Position: req.Position,
		Status:   req.Status,
		Notes:    req.Notes,
	})
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			l.Warn("create_job_error", "status", 400, "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		l.Error("create_job_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "server error")
	}

	publish(c, h.Producer, mykafka.TopicJobEvents, userID.String(), map[string]any{
		"type":    "job_created",
		"job_id":  job.ID.String(),
		"user_id": userID.String(),
		"company": job.Company,
	})
	h.index(c, job)

	l.Info("create_job_success", "job_id", job.ID)
	return c.JSON(http.StatusCreated, job)
}

func (h *JobHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "jobs.list")

	userID, err := userIDFromContext(c)
	if err != nil {
		l.Warn("list_jobs_error", "status", 401, "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	jobs, err := h.Svc.List(ctx, userID)
	if err != nil {
		l.Error("list_jobs_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "server error")
	}

	return c.JSON(http.StatusOK, jobs)
}

func (h *JobHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "jobs.get")

	userID, err := userIDFromContext(c)
	if err != nil {
		l.Warn("get_job_error", "status", 401, "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	jobID, err := h.jobID(c)
	if err != nil {
		// A malformed id can never match an owned job.
		l.Warn("get_job_error", "status", 404, "error", err)
		return echo.NewHTTPError(http.StatusNotFound, "job not found")
	}

	job, err := h.Svc.Get(ctx, userID, jobID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("get_job_error", "status", 404, "error", err)
			return echo.NewHTTPError(http.StatusNotFound, "job not found")
		}
		l.Error("get_job_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "server error")
	}

	return c.JSON(http.StatusOK, job)
}

func (h *JobHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "jobs.update")

	userID, err := userIDFromContext(c)
	if err != nil {
		l.Warn("update_job_error", "status", 401, "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	jobID, err := h.jobID(c)
	if err != nil {
		l.Warn("update_job_error", "status", 404, "error", err)
		return echo.NewHTTPError(http.StatusNotFound, "job not found")
	}

	var req updateJobRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_job_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	job, err := h.Svc.Update(ctx, userID, jobID, service.UpdateJobInput{
		Company:  req.Company,
		Position: req.Position,
		Status:   req.Status,
		Notes:    req.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			l.Warn("update_job_error", "status", 400, "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrNotFound):
			l.Warn("update_job_error", "status", 404, "error", err)
			return echo.NewHTTPError(http.StatusNotFound, "job not found")
		default:
			l.Error("update_job_error", "status", 500, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "server error")
		}
	}

	publish(c, h.Producer, mykafka.TopicJobEvents, userID.String(), map[string]any{
		"type":    "job_updated",
		"job_id":  job.ID.String(),
		"user_id": userID.String(),
		"status":  job.Status,
	})
	h.index(c, job)

	l.Info("update_job_success", "job_id", job.ID)
	return c.JSON(http.StatusOK, job)
}

func (h *JobHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "jobs.delete")

	userID, err := userIDFromContext(c)
	if err != nil {
		l.Warn("delete_job_error", "status", 401, "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	jobID, err := h.jobID(c)
	if err != nil {
		l.Warn("delete_job_error", "status", 404, "error", err)
		return echo.NewHTTPError(http.StatusNotFound, "job not found")
	}

	if err := h.Svc.Delete(ctx, userID, jobID); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("delete_job_error", "status", 404, "error", err)
			return echo.NewHTTPError(http.StatusNotFound, "job not found")
		}
		l.Error("delete_job_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "server error")
	}

	publish(c, h.Producer, mykafka.TopicJobEvents, userID.String(), map[string]any{
		"type":    "job_deleted",
		"job_id":  jobID.String(),
		"user_id": userID.String(),
	})
	if h.Indexer != nil {
		if err := h.Indexer.DeleteJob(ctx, jobID); err != nil {
			l.Error("deindex job failed", "job_id", jobID, "error", err)
		}
	}

	l.Info("delete_job_success", "job_id", jobID)
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

func (h *JobHTTP) Export(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "jobs.export")

	userID, err := userIDFromContext(c)
	if err != nil {
		l.Warn("export_jobs_error", "status", 401, "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	data, err := h.Svc.ExportCSV(ctx, userID)
	if err != nil {
		l.Error("export_jobs_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "server error")
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="jobs.csv"`)
	return c.Blob(http.StatusOK, "text/csv", data)
}

func (h *JobHTTP) Stats(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "jobs.stats")

	userID, err := userIDFromContext(c)
	if err != nil {
		l.Warn("job_stats_error", "status", 401, "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	stats, err := h.Svc.Stats(ctx, userID)
	if err != nil {
		l.Error("job_stats_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "server error")
	}

	return c.JSON(http.StatusOK, stats)
}

func (h *JobHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "jobs.search")

	userID, err := userIDFromContext(c)
	if err != nil {
		l.Warn("search_jobs_error", "status", 401, "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	if h.Indexer == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "search is disabled")
	}

	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "q is required")
	}

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	from, limit := util.Calculate(page, size)

	total, jobs, err := h.Indexer.Search(ctx, userID, q, from, limit)
	if err != nil {
		l.Error("search_jobs_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "server error")
	}

	return c.JSON(http.StatusOK, echo.Map{"total": total, "jobs": jobs})
}
