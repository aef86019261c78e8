package rest

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"strizh/internal/domain"
)

// canManageMaster разрешает операцию администратору либо мастеру
// над его собственным профилем.
func (h *Handler) canManageMaster(c *gin.Context, masterID int64) bool {
	role, err := getUserRole(c)
	if err != nil {
		return false
	}
	if role == domain.UserRoleAdmin {
		return true
	}

	userID, err := getUserID(c)
	if err != nil {
		return false
	}

	master, err := h.services.Master.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		return false
	}

	return master.ID == masterID
}

// @Summary Список мастеров
// @Description Возвращает мастеров салона, по умолчанию только активных
// @Tags Мастера
// @Produce json
// @Param all query bool false "Включать неактивных"
// @Param limit query int false "Количество записей" default(20)
// @Param offset query int false "Смещение" default(0)
// @Success 200 {array} domain.Master "Список мастеров"
// @Failure 500 {object} errorResponseBody "Внутренняя ошибка сервера"
// @Router /masters [get]
func (h *Handler) getMasters(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 0 {
		limit = 20
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	onlyActive := c.DefaultQuery("all", "false") != "true"

	masters, err := h.services.Master.List(c.Request.Context(), onlyActive, limit, offset)
	if err != nil {
		h.serviceErrorResponse(c, err, "ошибка при получении мастеров")
		return
	}

	successResponse(c, http.StatusOK, masters)
}

// @Summary Получить мастера по ID
// @Tags Мастера
// @Produce json
// @Param id path int true "ID мастера"
// @Success 200 {object} domain.Master "Мастер"
// @Failure 400 {object} errorResponseBody "Неверный формат ID"
// @Failure 404 {object} errorResponseBody "Мастер не найден"
// @Router /masters/{id} [get]
func (h *Handler) getMasterByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	master, err := h.services.Master.GetByID(c.Request.Context(), id)
	if err != nil {
		h.serviceErrorResponse(c, err, "ошибка при получении мастера")
		return
	}

	successResponse(c, http.StatusOK, master)
}

// @Summary Мой профиль мастера
// @Tags Мастера
// @Produce json
// @Success 200 {object} domain.Master "Профиль мастера"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 404 {object} errorResponseBody "Профиль не найден"
// @Security ApiKeyAuth
// @Router /masters/me [get]
func (h *Handler) getMyMasterProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	master, err := h.services.Master.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		h.serviceErrorResponse(c, err, "ошибка при получении профиля мастера")
		return
	}

	successResponse(c, http.StatusOK, master)
}

// @Summary Создать профиль мастера
// @Description Создает профиль мастера для существующего пользователя
// @Tags Мастера
// @Accept json
// @Produce json
// @Param input body domain.CreateMasterDTO true "Данные профиля"
// @Success 201 {object} map[string]interface{} "ID созданного профиля"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 404 {object} errorResponseBody "Пользователь не найден"
// @Security ApiKeyAuth
// @Router /masters [post]
func (h *Handler) createMaster(c *gin.Context) {
	var input domain.CreateMasterDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	id, err := h.services.Master.Create(c.Request.Context(), input.UserID, input)
	if err != nil {
		h.serviceErrorResponse(c, err, "ошибка при создании профиля мастера")
		return
	}

	createdResponse(c, gin.H{"id": id})
}

// @Summary Обновить профиль мастера
// @Tags Мастера
// @Accept json
// @Produce json
// @Param id path int true "ID мастера"
// @Param input body domain.UpdateMasterDTO true "Данные для обновления"
// @Success 200 {object} messageResponseType "Сообщение об успешном обновлении"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 404 {object} errorResponseBody "Мастер не найден"
// @Security ApiKeyAuth
// @Router /masters/{id} [put]
func (h *Handler) updateMaster(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	if !h.canManageMaster(c, id) {
		forbiddenResponse(c)
		return
	}

	var input domain.UpdateMasterDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	if err := h.services.Master.Update(c.Request.Context(), id, input); err != nil {
		h.serviceErrorResponse(c, err, "ошибка при обновлении профиля мастера")
		return
	}

	messageResponse(c, http.StatusOK, "профиль мастера обновлен")
}

// @Summary Загрузить фото мастера
// @Tags Мастера
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "ID мастера"
// @Param photo formData file true "Файл фотографии"
// @Success 200 {object} messageResponseType "Фото загружено"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 502 {object} errorResponseBody "Хранилище недоступно"
// @Security ApiKeyAuth
// @Router /masters/{id}/photo [post]
func (h *Handler) uploadMasterPhoto(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	if !h.canManageMaster(c, id) {
		forbiddenResponse(c)
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		badRequestResponse(c, "файл фотографии не передан")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("не удалось открыть загруженный файл", zap.Error(err))
		badRequestResponse(c, "не удалось прочитать файл")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error("не удалось прочитать загруженный файл", zap.Error(err))
		badRequestResponse(c, "не удалось прочитать файл")
		return
	}

	if err := h.services.Master.UploadProfilePhoto(c.Request.Context(), id, data, fileHeader.Filename); err != nil {
		h.serviceErrorResponse(c, err, "ошибка при загрузке фото")
		return
	}

	messageResponse(c, http.StatusOK, "фото загружено")
}

// @Summary Удалить фото мастера
// @Tags Мастера
// @Produce json
// @Param id path int true "ID мастера"
// @Success 204 {object} nil "Фото удалено"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 404 {object} errorResponseBody "Мастер не найден"
// @Security ApiKeyAuth
// @Router /masters/{id}/photo [delete]
func (h *Handler) deleteMasterPhoto(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	if !h.canManageMaster(c, id) {
		forbiddenResponse(c)
		return
	}

	if err := h.services.Master.DeleteProfilePhoto(c.Request.Context(), id); err != nil {
		h.serviceErrorResponse(c, err, "ошибка при удалении фото")
		return
	}

	noContentResponse(c)
}
