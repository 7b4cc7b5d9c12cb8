package ingest

import (
	"fmt"

	"github.com/snappword/snappword-backend/internal/domain"
)

const welcomeMessage = "嗨！歡迎加入 SnappWord 截詞 👋\n\n" +
	"我是你的 AI 單字卡助手 ✨\n" +
	"只要把學語言時的截圖傳給我，我就能幫你秒變精美單字卡！\n\n" +
	"📸 支援各種來源：\n" +
	"• Duolingo、Busuu 等學習 App\n" +
	"• Netflix、YouTube 字幕\n" +
	"• 文章、新聞、任何有生字的畫面\n\n" +
	"🚀 現在就試試看吧！\n" +
	"傳一張截圖給我，幾秒後就能收到你的第一組單字卡。\n\n" +
	"💡 輸入「幫助」可隨時查看使用說明"

const helpMessage = "📸 使用方式：\n\n" +
	"1. 在任何 App 截圖（Duolingo、Netflix、文章...）\n" +
	"2. 把截圖傳給我\n" +
	"3. 幾秒內收到精美單字卡！\n\n" +
	"就是這麼簡單 ✨"

const fallbackMessage = "📸 請傳送截圖給我，我來幫你提取單字！\n" +
	"輸入「幫助」查看使用說明。"

const dailyQuotaMessage = "📊 今天的截圖解析量已達上限\n" +
	"明天就會自動重置，請明天再繼續！"

const noWordsMessage = "我在這張截圖中沒有發現你在學習的單字 🤔\n" +
	"試試傳送 Duolingo、Netflix 字幕或文章的截圖！"

const downloadFailedMessage = "下載圖片時發生錯誤 😅\n請再傳一次截圖試試。"

const saveFailedMessage = "處理截圖時發生錯誤 😅\n請稍後重試，或換一張更清晰的截圖。"

const aiQuotaMessage = "AI 額度暫時用盡了 😅\n請稍後再試，造成不便很抱歉！"

const aiUnavailableMessage = "AI 服務暫時忙不過來 😅\n請稍後重試，或換一張更清晰的截圖。"

func quotaMessage(d domain.QuotaDecision) string {
	if d.Reason == domain.QuotaReasonDaily {
		return dailyQuotaMessage
	}
	return fmt.Sprintf("📊 本月已使用 %d/%d 張截圖額度\n", d.MonthlyUsed, d.MonthlyLimit) +
		"額度已用完，下個月會自動重置！\n\n" +
		"💎 升級方案可獲得更多額度：\nsnappword.com/pricing"
}

func usageMessage(d domain.QuotaDecision) string {
	limit := "無上限"
	if d.MonthlyLimit > 0 {
		limit = fmt.Sprintf("%d", d.MonthlyLimit)
	}
	return fmt.Sprintf("📊 本月已使用 %d/%s 張截圖額度\n目前方案：%s", d.MonthlyUsed, limit, d.Tier)
}

// savedMessage is the short text summary sent after the card carousel.
func savedMessage(cards []domain.Card, d domain.QuotaDecision) string {
	msg := fmt.Sprintf("✅ 已為你建立 %d 張單字卡！\n打開單字本開始複習 📚 snappword.com/flashcard", len(cards))
	if d.MonthlyLimit > 0 {
		msg += fmt.Sprintf("\n📊 本月額度 %d/%d", d.MonthlyUsed+1, d.MonthlyLimit)
	}
	return msg
}
