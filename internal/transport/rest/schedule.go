package rest

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"strizh/internal/domain"
)

// @Summary Недельное расписание мастера
// @Description Возвращает шаблон рабочей недели мастера
// @Tags Расписание
// @Produce json
// @Param id path int true "ID мастера"
// @Success 200 {array} domain.WeeklySchedule "Расписание по дням недели"
// @Failure 400 {object} errorResponseBody "Неверный формат ID"
// @Failure 404 {object} errorResponseBody "Мастер не найден"
// @Router /masters/{id}/schedule [get]
func (h *Handler) getMasterSchedule(c *gin.Context) {
	masterID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	schedule, err := h.services.Schedule.ListWeekly(c.Request.Context(), masterID)
	if err != nil {
		h.serviceErrorResponse(c, err, "ошибка при получении расписания")
		return
	}

	successResponse(c, http.StatusOK, schedule)
}

// @Summary Задать недельное расписание
// @Description Создает или обновляет рабочие окна мастера по дням недели
// @Tags Расписание
// @Accept json
// @Produce json
// @Param id path int true "ID мастера"
// @Param input body []domain.UpsertWeeklyScheduleDTO true "Рабочие окна по дням недели"
// @Success 200 {object} map[string]interface{} "ID затронутых записей"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 404 {object} errorResponseBody "Мастер не найден"
// @Security ApiKeyAuth
// @Router /masters/{id}/schedule [put]
func (h *Handler) upsertMasterSchedule(c *gin.Context) {
	masterID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	if !h.canManageMaster(c, masterID) {
		forbiddenResponse(c)
		return
	}

	var input []domain.UpsertWeeklyScheduleDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	if len(input) == 0 {
		badRequestResponse(c, "расписание не может быть пустым")
		return
	}

	ids := make([]int64, 0, len(input))
	for _, dto := range input {
		id, err := h.services.Schedule.UpsertWeekly(c.Request.Context(), masterID, dto)
		if err != nil {
			h.serviceErrorResponse(c, err, "ошибка при сохранении расписания")
			return
		}
		ids = append(ids, id)
	}

	successResponse(c, http.StatusOK, gin.H{"ids": ids})
}

// @Summary Свободные слоты мастера
// @Description Возвращает времена начала, в которые услуга с допами целиком помещается в рабочее окно
// @Tags Расписание
// @Produce json
// @Param id path int true "ID мастера"
// @Param date query string true "Дата в формате YYYY-MM-DD"
// @Param service_id query int true "ID услуги"
// @Param addon_ids query string false "ID допуслуг через запятую"
// @Success 200 {array} string "Времена начала в формате HH:MM"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Failure 404 {object} errorResponseBody "Мастер или услуга не найдены"
// @Router /masters/{id}/free-slots [get]
func (h *Handler) getFreeSlots(c *gin.Context) {
	masterID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	date := c.Query("date")
	if date == "" {
		badRequestResponse(c, "не указана дата")
		return
	}

	serviceID, err := strconv.ParseInt(c.Query("service_id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "не указана услуга")
		return
	}

	addonIDs, err := parseIDList(c.Query("addon_ids"))
	if err != nil {
		badRequestResponse(c, "неверный формат списка допуслуг")
		return
	}

	slots, err := h.services.Availability.GetFreeSlots(c.Request.Context(), masterID, date, serviceID, addonIDs)
	if err != nil {
		h.serviceErrorResponse(c, err, "ошибка при расчете свободных слотов")
		return
	}

	successResponse(c, http.StatusOK, slots)
}

// @Summary Отгулы мастера
// @Tags Расписание
// @Produce json
// @Param id path int true "ID мастера"
// @Success 200 {array} domain.TimeOff "Список отгулов"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Security ApiKeyAuth
// @Router /masters/{id}/time-off [get]
func (h *Handler) getMasterTimeOff(c *gin.Context) {
	masterID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	if !h.canManageMaster(c, masterID) {
		forbiddenResponse(c)
		return
	}

	timeOff, err := h.services.Schedule.ListTimeOff(c.Request.Context(), masterID)
	if err != nil {
		h.serviceErrorResponse(c, err, "ошибка при получении отгулов")
		return
	}

	successResponse(c, http.StatusOK, timeOff)
}

// @Summary Оформить отгул
// @Description Закрывает период для записи и каскадно отменяет попавшие под него брони с уведомлением клиентов
// @Tags Расписание
// @Accept json
// @Produce json
// @Param id path int true "ID мастера"
// @Param input body domain.CreateTimeOffDTO true "Период и причина отгула"
// @Success 200 {object} domain.TimeOffResult "Итог оформления отгула"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 404 {object} errorResponseBody "Мастер не найден"
// @Security ApiKeyAuth
// @Router /masters/{id}/time-off [post]
func (h *Handler) markMasterUnavailable(c *gin.Context) {
	masterID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	if !h.canManageMaster(c, masterID) {
		forbiddenResponse(c)
		return
	}

	var input domain.CreateTimeOffDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	result, err := h.services.Schedule.MarkUnavailable(c.Request.Context(), masterID, input)
	if err != nil {
		// Каскад мог отмениться не полностью, частичный итог отдаем вместе с ошибкой.
		if result != nil {
			h.logger.Error("отгул оформлен с ошибками каскада", zap.Error(err), zap.Int64("master_id", masterID))
			c.JSON(http.StatusInternalServerError, gin.H{
				"status":  "error",
				"message": err.Error(),
				"data":    result,
			})
			return
		}
		h.serviceErrorResponse(c, err, "ошибка при оформлении отгула")
		return
	}

	successResponse(c, http.StatusOK, result)
}

func parseIDList(raw string) ([]int64, error) {
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, nil
}
