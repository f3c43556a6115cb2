package infrastructure

import (
	"xiaoliu/internal/entities"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const keyboardColumns = 2

// FeatureKeyboard builds a reply keyboard with one button per feature. Each
// button sends the feature's first command phrase, so a tap is routed like
// a typed trigger.
func FeatureKeyboard(features []entities.Feature) tgbotapi.ReplyKeyboardMarkup {
	var rows [][]tgbotapi.KeyboardButton
	var row []tgbotapi.KeyboardButton

	for _, f := range features {
		if len(f.Commands) == 0 {
			continue
		}
		row = append(row, tgbotapi.NewKeyboardButton(f.Commands[0]))
		if len(row) == keyboardColumns {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	keyboard := tgbotapi.NewReplyKeyboard(rows...)
	keyboard.ResizeKeyboard = true
	return keyboard
}
