package http

import (
	"encoding/json"

	"claritas/internal/domain"
	"claritas/internal/ports/input"

	"github.com/gofiber/fiber/v2"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"
	"github.com/sirupsen/logrus"
)

const lineSignatureHeader = "X-Line-Signature"

// LineWebhookHandler struct - Primary/Driving adapter for the caregiver's LINE chat
type LineWebhookHandler struct {
	service       input.LineWebhookService
	channelSecret string
}

// NewLineWebhookHandler func - Creates new LINE webhook handler
func NewLineWebhookHandler(service input.LineWebhookService, channelSecret string) *LineWebhookHandler {
	return &LineWebhookHandler{
		service:       service,
		channelSecret: channelSecret,
	}
}

// HandleWebhook func - Answers follow greetings and chat commands
// @Summary LINE Webhook
// @Description Follow greetings and status commands from the caregiver's LINE chat
// @Tags LINE
// @Accept application/json
// @Produce json
// @Success 200 {object} ResponseBody
// @Failure 400 {object} ResponseBody
// @Router /webhook/line [post]
func (h *LineWebhookHandler) HandleWebhook(c *fiber.Ctx) error {
	body := c.Body()
	if !webhook.ValidateSignature(h.channelSecret, c.Get(lineSignatureHeader), body) {
		logrus.Warn("Rejected LINE webhook with an invalid signature")
		return c.Status(BadRequest.Code).JSON(ResponseBody{Status: BadRequest})
	}

	var callback webhook.CallbackRequest
	if err := json.Unmarshal(body, &callback); err != nil {
		logrus.Errorf("Failed to decode LINE webhook: %v", err)
		return c.Status(BadRequest.Code).JSON(ResponseBody{Status: BadRequest})
	}

	request := domain.LineWebhookRequest{}
	for _, event := range callback.Events {
		if chatEvent, ok := toLineEvent(event); ok {
			request.Events = append(request.Events, chatEvent)
		}
	}
	if len(request.Events) == 0 {
		return c.JSON(ResponseBody{Status: Success})
	}

	if err := h.service.HandleWebhook(c.UserContext(), request); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(ResponseBody{Status: Success})
}

// toLineEvent keeps follows and text messages, the only events the bot answers
func toLineEvent(event webhook.EventInterface) (domain.LineEvent, bool) {
	switch e := event.(type) {
	case webhook.FollowEvent:
		return domain.LineEvent{
			Kind:       domain.LineEventFollow,
			ChatID:     chatID(e.Source),
			ReplyToken: e.ReplyToken,
		}, true
	case webhook.MessageEvent:
		text, ok := e.Message.(webhook.TextMessageContent)
		if !ok {
			return domain.LineEvent{}, false
		}
		return domain.LineEvent{
			Kind:       domain.LineEventCommand,
			ChatID:     chatID(e.Source),
			ReplyToken: e.ReplyToken,
			Command:    domain.ParseLineCommand(text.Text),
		}, true
	default:
		logrus.Debugf("Ignored LINE event %T", event)
		return domain.LineEvent{}, false
	}
}

// chatID is the push address of the chat an event came from
func chatID(source webhook.SourceInterface) string {
	switch s := source.(type) {
	case webhook.GroupSource:
		return s.GroupId
	case webhook.RoomSource:
		return s.RoomId
	case webhook.UserSource:
		return s.UserId
	default:
		return ""
	}
}
