package menu

import (
	"net/http"

	"go.uber.org/zap"

	"cozycup/internal/httpx"
)

type Controller struct {
	service Service
	logger  *zap.Logger
}

func NewController(service Service, logger *zap.Logger) *Controller {
	return &Controller{
		service: service,
		logger:  logger,
	}
}

func (c *Controller) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := c.service.ListCategories(r.Context(), true)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.Respond(w, r, http.StatusOK, categories)
}

func (c *Controller) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	category, err := c.service.GetCategory(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.Respond(w, r, http.StatusOK, category)
}

func (c *Controller) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	category, err := c.service.CreateCategory(r.Context(), req)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.Logger(r.Context()).Info("category created", zap.Uint("categoryId", category.ID))
	httpx.RespondMessage(w, r, http.StatusCreated, "Category created successfully", category)
}

func (c *Controller) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	var req CategoryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	category, err := c.service.UpdateCategory(r.Context(), id, req)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.RespondMessage(w, r, http.StatusOK, "Category updated successfully", category)
}

func (c *Controller) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if err := c.service.DeleteCategory(r.Context(), id); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.RespondMessage(w, r, http.StatusOK, "Category deleted successfully", nil)
}

func (c *Controller) ListMenuItems(w http.ResponseWriter, r *http.Request) {
	items, err := c.service.ListAvailable(r.Context(), nil)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.Respond(w, r, http.StatusOK, items)
}

func (c *Controller) ListMenuItemsByCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := httpx.PathID(r, "categoryId")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	items, err := c.service.ListAvailable(r.Context(), &categoryID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.Respond(w, r, http.StatusOK, items)
}

func (c *Controller) GetMenuItem(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	item, err := c.service.GetMenuItem(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.Respond(w, r, http.StatusOK, item)
}

func (c *Controller) AdminListMenuItems(w http.ResponseWriter, r *http.Request) {
	items, err := c.service.ListAll(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.Respond(w, r, http.StatusOK, items)
}

func (c *Controller) CreateMenuItem(w http.ResponseWriter, r *http.Request) {
	var req MenuItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	item, err := c.service.CreateMenuItem(r.Context(), req)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.Logger(r.Context()).Info("menu item created", zap.Uint("menuItemId", item.ID))
	httpx.RespondMessage(w, r, http.StatusCreated, "Menu item created successfully", item)
}

func (c *Controller) UpdateMenuItem(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	var req MenuItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	item, err := c.service.UpdateMenuItem(r.Context(), id, req)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.RespondMessage(w, r, http.StatusOK, "Menu item updated successfully", item)
}

func (c *Controller) DeleteMenuItem(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if err := c.service.DeleteMenuItem(r.Context(), id); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.RespondMessage(w, r, http.StatusOK, "Menu item deleted successfully", nil)
}
