package v1

import (
	"net/http"
	"time"

	"go-profile-portal/internal/delivery/http/middleware"
	"go-profile-portal/internal/delivery/http/response"
	"go-profile-portal/internal/domain"
	"go-profile-portal/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type ExportHandler struct {
	exportUC domain.ExportUsecase
	files    domain.FileStorage
	loc      *time.Location
}

func NewExportHandler(staff *gin.RouterGroup, exportUC domain.ExportUsecase, files domain.FileStorage, loc *time.Location) {
	if loc == nil {
		loc = time.Local
	}
	handler := &ExportHandler{exportUC: exportUC, files: files, loc: loc}

	staff.GET("/export-profiles/", handler.ExportProfiles)
	staff.GET("/export-profiles/options/", handler.FilterOptions)
}

// ExportRow is one profile as listed on the export page.
type ExportRow struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	MobileNo       string    `json:"mobile_no"`
	Gender         string    `json:"gender"`
	Education      string    `json:"education"`
	WorkExperience string    `json:"work_experience"`
	Skills         []string  `json:"skills"`
	PhotoURL       string    `json:"photo_url,omitempty"`
	ResumeURL      string    `json:"resume_url,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type ExportListView struct {
	Profiles        []ExportRow        `json:"profiles"`
	Count           int                `json:"count"`
	SelectedFilters domain.ExportQuery `json:"selected_filters"`
}

// ExportProfiles godoc
// @Summary      Filter and export profiles
// @Description  Lists profiles matching every supplied filter. With download=1 the same rows are returned as an xlsx workbook.
// @Tags         export
// @Produce      json,application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Param        gender           query     string  false  "Exact match, case-insensitive"
// @Param        education        query     string  false  "Substring, case-insensitive"
// @Param        work_experience  query     string  false  "Substring, case-insensitive"
// @Param        created_date     query     string  false  "YYYY-MM-DD, inclusive"
// @Param        skills           query     string  false  "Comma separated, all required"
// @Param        download         query     string  false  "1 to download xlsx"
// @Success      200  {object}  response.Response{data=ExportListView}
// @Failure      401  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /export-profiles/ [get]
func (h *ExportHandler) ExportProfiles(c *gin.Context) {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		c.Error(apperror.Unauthorized("Authentication credentials were not provided."))
		return
	}

	var q domain.ExportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.Error(apperror.BadRequest("Malformed query"))
		return
	}
	filter := q.Filter(h.loc)

	if q.WantsDownload() {
		data, _, err := h.exportUC.ExportProfiles(c.Request.Context(), actor, filter)
		if err != nil {
			c.Error(err)
			return
		}
		response.Attachment(c, domain.ExportFilename, domain.ExportMIME, data)
		return
	}

	profiles, err := h.exportUC.ListProfiles(c.Request.Context(), actor, filter)
	if err != nil {
		c.Error(err)
		return
	}

	rows := make([]ExportRow, 0, len(profiles))
	for _, p := range profiles {
		rows = append(rows, h.row(p))
	}

	response.Success(c, http.StatusOK, "Profiles", ExportListView{
		Profiles:        rows,
		Count:           len(rows),
		SelectedFilters: q,
	})
}

// FilterOptions godoc
// @Summary      Export filter choices
// @Description  Enum choices and every distinct lowercased skill on file.
// @Tags         export
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=domain.ProfileFilterOptions}
// @Failure      403  {object}  response.Response
// @Router       /export-profiles/options/ [get]
func (h *ExportHandler) FilterOptions(c *gin.Context) {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		c.Error(apperror.Unauthorized("Authentication credentials were not provided."))
		return
	}

	opts, err := h.exportUC.FilterOptions(c.Request.Context(), actor)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Filter options", opts)
}

func (h *ExportHandler) row(p domain.ProfileWithUser) ExportRow {
	r := ExportRow{
		ID:             p.ID,
		Name:           p.User.Name,
		Email:          p.User.Email,
		MobileNo:       p.User.MobileNo,
		Gender:         string(p.Gender),
		Education:      string(p.Education),
		WorkExperience: string(p.WorkExperience),
		Skills:         p.Skills,
		CreatedAt:      p.CreatedAt.In(h.loc),
	}
	if p.Photo != "" {
		r.PhotoURL = h.files.URL(p.Photo)
	}
	if p.Resume != "" {
		r.ResumeURL = h.files.URL(p.Resume)
	}
	return r
}
