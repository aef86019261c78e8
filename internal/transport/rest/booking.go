package rest

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"strizh/internal/domain"
)

// @Summary Создать запись
// @Description Удерживает слот и создает платежную сессию. Запись подтверждается после оплаты.
// @Tags Записи
// @Accept json
// @Produce json
// @Param input body domain.CreateBookingDTO true "Данные записи"
// @Success 201 {object} domain.BookingHold "Удержание слота и ссылка на оплату"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Failure 404 {object} errorResponseBody "Мастер или услуга не найдены"
// @Failure 409 {object} errorResponseBody "Слот уже занят"
// @Failure 502 {object} errorResponseBody "Платежный провайдер недоступен"
// @Router /bookings [post]
func (h *Handler) initiateBooking(c *gin.Context) {
	var input domain.CreateBookingDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	hold, err := h.services.Booking.Initiate(c.Request.Context(), input)
	if err != nil {
		h.serviceErrorResponse(c, err, "ошибка при создании записи")
		return
	}

	createdResponse(c, hold)
}

// @Summary Подтвердить оплату
// @Description Проверяет платеж у провайдера и подтверждает запись. Сюда же ведет callback платежной страницы.
// @Tags Записи
// @Produce json
// @Param reference query string true "Платежная ссылка записи"
// @Success 200 {object} domain.Booking "Подтвержденная запись"
// @Failure 400 {object} errorResponseBody "Платеж не прошел"
// @Failure 404 {object} errorResponseBody "Запись не найдена"
// @Failure 409 {object} errorResponseBody "Слот перепродан, требуется возврат"
// @Failure 502 {object} errorResponseBody "Платежный провайдер недоступен"
// @Router /bookings/payment/confirm [get]
func (h *Handler) confirmPayment(c *gin.Context) {
	reference := c.Query("reference")
	if reference == "" {
		badRequestResponse(c, "не указана платежная ссылка")
		return
	}

	booking, err := h.services.Booking.ConfirmPayment(c.Request.Context(), reference)
	if err != nil {
		// Оплата прошла, но слот успел уйти: отдаем отмененную запись,
		// по ней будет оформлен возврат.
		if errors.Is(err, domain.ErrSlotTaken) && booking != nil {
			c.JSON(http.StatusConflict, gin.H{
				"status":  "error",
				"message": err.Error(),
				"data":    booking,
			})
			return
		}
		h.serviceErrorResponse(c, err, "ошибка при подтверждении оплаты")
		return
	}

	successResponse(c, http.StatusOK, booking)
}

// @Summary Статус записи по платежной ссылке
// @Description Возвращает запись по платежной ссылке, выданной при создании. Для клиентов без учетной записи.
// @Tags Записи
// @Produce json
// @Param reference query string true "Платежная ссылка записи"
// @Success 200 {object} domain.Booking "Запись"
// @Failure 400 {object} errorResponseBody "Не указана платежная ссылка"
// @Failure 404 {object} errorResponseBody "Запись не найдена"
// @Router /bookings/status [get]
func (h *Handler) getBookingByReference(c *gin.Context) {
	reference := c.Query("reference")
	if reference == "" {
		badRequestResponse(c, "не указана платежная ссылка")
		return
	}

	booking, err := h.services.Booking.GetByReference(c.Request.Context(), reference)
	if err != nil {
		h.serviceErrorResponse(c, err, "ошибка при получении записи")
		return
	}

	successResponse(c, http.StatusOK, booking)
}

// @Summary Список записей
// @Description Возвращает записи с фильтрацией по мастеру, статусу, датам и клиенту
// @Tags Записи
// @Produce json
// @Param master_id query int false "ID мастера"
// @Param status query string false "Статус записи"
// @Param date_from query string false "Дата с (YYYY-MM-DD)"
// @Param date_to query string false "Дата по (YYYY-MM-DD)"
// @Param customer_email query string false "Email клиента"
// @Param limit query int false "Количество записей" default(20)
// @Param offset query int false "Смещение" default(0)
// @Success 200 {object} paginatedResponse "Список записей"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Security ApiKeyAuth
// @Router /bookings [get]
func (h *Handler) getBookings(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	filter := domain.BookingFilter{
		Limit:  limit,
		Offset: offset,
	}

	if masterIDStr := c.Query("master_id"); masterIDStr != "" {
		masterID, err := strconv.ParseInt(masterIDStr, 10, 64)
		if err != nil {
			badRequestResponse(c, "неверный формат ID мастера")
			return
		}
		filter.MasterID = &masterID
	}

	if statusStr := c.Query("status"); statusStr != "" {
		status := domain.BookingStatus(statusStr)
		filter.Status = &status
	}

	if dateFrom := c.Query("date_from"); dateFrom != "" {
		parsed, err := time.Parse("2006-01-02", dateFrom)
		if err != nil {
			badRequestResponse(c, "неверный формат даты, ожидается YYYY-MM-DD")
			return
		}
		filter.StartDate = &parsed
	}

	if dateTo := c.Query("date_to"); dateTo != "" {
		parsed, err := time.Parse("2006-01-02", dateTo)
		if err != nil {
			badRequestResponse(c, "неверный формат даты, ожидается YYYY-MM-DD")
			return
		}
		filter.EndDate = &parsed
	}

	if email := c.Query("customer_email"); email != "" {
		filter.CustomerEmail = &email
	}

	bookings, total, err := h.services.Booking.List(c.Request.Context(), filter)
	if err != nil {
		h.serviceErrorResponse(c, err, "ошибка при получении записей")
		return
	}

	page := offset/limit + 1

	paginatedSuccessResponse(c, bookings, total, page, limit)
}

// @Summary Получить запись по ID
// @Tags Записи
// @Produce json
// @Param id path int true "ID записи"
// @Success 200 {object} domain.Booking "Запись"
// @Failure 400 {object} errorResponseBody "Неверный формат ID"
// @Failure 404 {object} errorResponseBody "Запись не найдена"
// @Security ApiKeyAuth
// @Router /bookings/{id} [get]
func (h *Handler) getBookingByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	booking, err := h.services.Booking.GetByID(c.Request.Context(), id)
	if err != nil {
		h.serviceErrorResponse(c, err, "ошибка при получении записи")
		return
	}

	successResponse(c, http.StatusOK, booking)
}

type cancelBookingRequest struct {
	Reason string `json:"reason"`
}

// @Summary Отменить запись
// @Description Переводит запись в статус cancelled и уведомляет клиента
// @Tags Записи
// @Accept json
// @Produce json
// @Param id path int true "ID записи"
// @Param input body cancelBookingRequest false "Причина отмены"
// @Success 200 {object} messageResponseType "Запись отменена"
// @Failure 400 {object} errorResponseBody "Запись уже в терминальном статусе"
// @Failure 404 {object} errorResponseBody "Запись не найдена"
// @Security ApiKeyAuth
// @Router /bookings/{id}/cancel [post]
func (h *Handler) cancelBooking(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	var input cancelBookingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			h.logger.Warn("неверный формат данных", zap.Error(err))
			badRequestResponse(c, "неверный формат данных")
			return
		}
	}

	if err := h.services.Booking.Cancel(c.Request.Context(), id, input.Reason); err != nil {
		h.serviceErrorResponse(c, err, "ошибка при отмене записи")
		return
	}

	messageResponse(c, http.StatusOK, "запись отменена")
}

// @Summary Завершить запись
// @Description Переводит подтвержденную запись в статус completed после визита
// @Tags Записи
// @Produce json
// @Param id path int true "ID записи"
// @Success 200 {object} messageResponseType "Запись завершена"
// @Failure 400 {object} errorResponseBody "Запись не в статусе confirmed"
// @Failure 404 {object} errorResponseBody "Запись не найдена"
// @Security ApiKeyAuth
// @Router /bookings/{id}/complete [post]
func (h *Handler) completeBooking(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	if err := h.services.Booking.Complete(c.Request.Context(), id); err != nil {
		h.serviceErrorResponse(c, err, "ошибка при завершении записи")
		return
	}

	messageResponse(c, http.StatusOK, "запись завершена")
}

// @Summary Запустить рассылку напоминаний
// @Description Отправляет напоминания по завтрашним подтвержденным записям. Вызывается планировщиком.
// @Tags Служебные
// @Produce json
// @Success 200 {object} domain.SweepResult "Итог прогона"
// @Failure 401 {object} errorResponseBody "Неверный служебный токен"
// @Security ApiKeyAuth
// @Router /internal/reminders/sweep [post]
func (h *Handler) runReminderSweep(c *gin.Context) {
	result, err := h.services.Reminder.RunSweep(c.Request.Context())
	if err != nil {
		h.serviceErrorResponse(c, err, "ошибка при рассылке напоминаний")
		return
	}

	successResponse(c, http.StatusOK, result)
}
