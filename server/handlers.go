package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"go.ntppool.org/imagerotate/catalog"
	"go.ntppool.org/imagerotate/selector"
)

type imageView struct {
	URL        string   `json:"url"`
	Categories []string `json:"categories"`
}

type imageStatus struct {
	URL        string   `json:"url"`
	ShowsLeft  int      `json:"shows_left"`
	Categories []string `json:"categories"`
}

type statusView struct {
	Images      []imageStatus `json:"images"`
	Recent      []string      `json:"recent"`
	RecencySize int           `json:"recency_size"`
	Time        time.Time     `json:"time"`
}

type errorView struct {
	Error      string   `json:"error"`
	Categories []string `json:"categories,omitempty"`
}

func requestedCategories(c echo.Context) catalog.Categories {
	return catalog.RequestCategories(c.QueryParams()["category"]...)
}

func (srv *Server) showImage(c echo.Context) error {
	requested := requestedCategories(c)

	img, err := srv.sel.Select(c.Request().Context(), requested)
	if errors.Is(err, selector.ErrNoEligibleImage) {
		return c.Render(http.StatusNotFound, "no_image.html", imageView{
			Categories: requested.Sorted(),
		})
	}
	if err != nil {
		return err
	}

	return c.Render(http.StatusOK, "image_viewer.html", imageView{
		URL:        img.URL,
		Categories: img.Categories.Sorted(),
	})
}

func (srv *Server) imageJSON(c echo.Context) error {
	requested := requestedCategories(c)

	img, err := srv.sel.Select(c.Request().Context(), requested)
	if errors.Is(err, selector.ErrNoEligibleImage) {
		return c.JSON(http.StatusNotFound, errorView{
			Error:      "no image available",
			Categories: requested.Sorted(),
		})
	}
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, imageView{
		URL:        img.URL,
		Categories: img.Categories.Sorted(),
	})
}

func (srv *Server) status(c echo.Context) error {
	st := srv.sel.Status()

	r := statusView{
		Images:      make([]imageStatus, 0, len(st.Images)),
		Recent:      st.Recent,
		RecencySize: st.Capacity,
		Time:        st.Time,
	}
	for _, img := range st.Images {
		r.Images = append(r.Images, imageStatus{
			URL:        img.URL,
			ShowsLeft:  img.ShowsLeft,
			Categories: img.Categories.Sorted(),
		})
	}

	return c.JSON(http.StatusOK, r)
}
