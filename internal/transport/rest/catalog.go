package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"strizh/internal/domain"
)

// @Summary Список услуг
// @Description Возвращает услуги салона с фильтрацией по категории и поиском
// @Tags Каталог
// @Produce json
// @Param category query string false "Категория услуги"
// @Param search query string false "Поисковая строка"
// @Param all query bool false "Включать неактивные"
// @Param limit query int false "Количество записей" default(20)
// @Param offset query int false "Смещение" default(0)
// @Success 200 {object} paginatedResponse "Список услуг"
// @Failure 500 {object} errorResponseBody "Внутренняя ошибка сервера"
// @Router /services [get]
func (h *Handler) getServices(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	filter := domain.ServiceFilter{
		Limit:  limit,
		Offset: offset,
	}

	if category := c.Query("category"); category != "" {
		filter.Category = &category
	}
	if search := c.Query("search"); search != "" {
		filter.SearchTerm = &search
	}
	if c.DefaultQuery("all", "false") != "true" {
		active := true
		filter.IsActive = &active
	}

	services, total, err := h.services.Catalog.ListServices(c.Request.Context(), filter)
	if err != nil {
		h.serviceErrorResponse(c, err, "ошибка при получении услуг")
		return
	}

	page := offset/limit + 1

	paginatedSuccessResponse(c, services, total, page, limit)
}

// @Summary Получить услугу по ID
// @Tags Каталог
// @Produce json
// @Param id path int true "ID услуги"
// @Success 200 {object} domain.Service "Услуга"
// @Failure 400 {object} errorResponseBody "Неверный формат ID"
// @Failure 404 {object} errorResponseBody "Услуга не найдена"
// @Router /services/{id} [get]
func (h *Handler) getServiceByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	service, err := h.services.Catalog.GetServiceByID(c.Request.Context(), id)
	if err != nil {
		h.serviceErrorResponse(c, err, "ошибка при получении услуги")
		return
	}

	successResponse(c, http.StatusOK, service)
}

// @Summary Создать услугу
// @Tags Каталог
// @Accept json
// @Produce json
// @Param input body domain.CreateServiceDTO true "Данные услуги"
// @Success 201 {object} map[string]interface{} "ID созданной услуги"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Security ApiKeyAuth
// @Router /services [post]
func (h *Handler) createService(c *gin.Context) {
	var input domain.CreateServiceDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	id, err := h.services.Catalog.CreateService(c.Request.Context(), input)
	if err != nil {
		h.serviceErrorResponse(c, err, "ошибка при создании услуги")
		return
	}

	createdResponse(c, gin.H{"id": id})
}

// @Summary Обновить услугу
// @Tags Каталог
// @Accept json
// @Produce json
// @Param id path int true "ID услуги"
// @Param input body domain.UpdateServiceDTO true "Данные для обновления"
// @Success 200 {object} messageResponseType "Сообщение об успешном обновлении"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Failure 404 {object} errorResponseBody "Услуга не найдена"
// @Security ApiKeyAuth
// @Router /services/{id} [put]
func (h *Handler) updateService(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	var input domain.UpdateServiceDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	if err := h.services.Catalog.UpdateService(c.Request.Context(), id, input); err != nil {
		h.serviceErrorResponse(c, err, "ошибка при обновлении услуги")
		return
	}

	messageResponse(c, http.StatusOK, "услуга обновлена")
}

// @Summary Список допуслуг
// @Tags Каталог
// @Produce json
// @Param all query bool false "Включать неактивные"
// @Success 200 {array} domain.Addon "Список допуслуг"
// @Failure 500 {object} errorResponseBody "Внутренняя ошибка сервера"
// @Router /addons [get]
func (h *Handler) getAddons(c *gin.Context) {
	onlyActive := c.DefaultQuery("all", "false") != "true"

	addons, err := h.services.Catalog.ListAddons(c.Request.Context(), onlyActive)
	if err != nil {
		h.serviceErrorResponse(c, err, "ошибка при получении допуслуг")
		return
	}

	successResponse(c, http.StatusOK, addons)
}

// @Summary Создать допуслугу
// @Tags Каталог
// @Accept json
// @Produce json
// @Param input body domain.CreateAddonDTO true "Данные допуслуги"
// @Success 201 {object} map[string]interface{} "ID созданной допуслуги"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Security ApiKeyAuth
// @Router /addons [post]
func (h *Handler) createAddon(c *gin.Context) {
	var input domain.CreateAddonDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	id, err := h.services.Catalog.CreateAddon(c.Request.Context(), input)
	if err != nil {
		h.serviceErrorResponse(c, err, "ошибка при создании допуслуги")
		return
	}

	createdResponse(c, gin.H{"id": id})
}

// @Summary Обновить допуслугу
// @Tags Каталог
// @Accept json
// @Produce json
// @Param id path int true "ID допуслуги"
// @Param input body domain.UpdateAddonDTO true "Данные для обновления"
// @Success 200 {object} messageResponseType "Сообщение об успешном обновлении"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Failure 404 {object} errorResponseBody "Допуслуга не найдена"
// @Security ApiKeyAuth
// @Router /addons/{id} [put]
func (h *Handler) updateAddon(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	var input domain.UpdateAddonDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	if err := h.services.Catalog.UpdateAddon(c.Request.Context(), id, input); err != nil {
		h.serviceErrorResponse(c, err, "ошибка при обновлении допуслуги")
		return
	}

	messageResponse(c, http.StatusOK, "допуслуга обновлена")
}
