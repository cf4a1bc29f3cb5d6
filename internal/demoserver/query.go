package demoserver

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/meetvaani/vaani/internal/backend"
	"github.com/meetvaani/vaani/internal/intent"
	"github.com/meetvaani/vaani/pkg/utils"
)

// replyTable holds the canned reply per intent and language. Missing
// languages fall back to English.
var replyTable = map[intent.Label]map[string]string{
	intent.Greeting: {
		"en": "Hello! I'm Vaani, your network assistant. How can I help you today?",
		"hi": "नमस्ते! मैं वाणी हूँ, आपकी नेटवर्क सहायक। मैं आपकी कैसे मदद कर सकती हूँ?",
		"ta": "வணக்கம்! நான் வாணி, உங்கள் நெட்வொர்க் உதவியாளர். நான் எப்படி உதவலாம்?",
		"te": "నమస్తే! నేను వాణి, మీ నెట్‌వర్క్ సహాయకురాలు. నేను ఎలా సహాయం చేయగలను?",
	},
	intent.Balance: {
		"en": "Your balance is ₹156.50",
		"hi": "आपका बैलेंस ₹156.50 है",
		"ta": "உங்கள் இருப்பு ₹156.50",
		"te": "మీ బ్యాలెన్స్ ₹156.50",
	},
	intent.Recharge: {
		"en": "I've started a ₹200 recharge for your number. You'll get a confirmation SMS in a minute.",
		"hi": "मैंने आपके नंबर के लिए ₹200 का रिचार्ज शुरू कर दिया है। एक मिनट में पुष्टि का SMS मिलेगा।",
		"ta": "உங்கள் எண்ணுக்கு ₹200 ரீசார்ஜ் தொடங்கிவிட்டேன். ஒரு நிமிடத்தில் உறுதி SMS வரும்.",
		"te": "మీ నంబర్‌కు ₹200 రీఛార్జ్ ప్రారంభించాను. ఒక నిమిషంలో నిర్ధారణ SMS వస్తుంది.",
	},
	intent.Plan: {
		"en": "Here's a comparison of our popular plans: Smart 199 gives 1.5GB/day, Power 299 gives 2GB/day with OTT, and Max 499 gives 3GB/day unlimited calls.",
		"hi": "हमारे लोकप्रिय प्लान: स्मार्ट 199 में 1.5GB/दिन, पावर 299 में 2GB/दिन OTT के साथ, और मैक्स 499 में 3GB/दिन अनलिमिटेड कॉल।",
		"ta": "எங்கள் பிரபல திட்டங்கள்: ஸ்மார்ட் 199-ல் 1.5GB/நாள், பவர் 299-ல் 2GB/நாள் OTT உடன், மேக்ஸ் 499-ல் 3GB/நாள் வரம்பற்ற அழைப்புகள்.",
		"te": "మా ప్రసిద్ధ ప్లాన్‌లు: స్మార్ట్ 199లో 1.5GB/రోజు, పవర్ 299లో 2GB/రోజు OTTతో, మాక్స్ 499లో 3GB/రోజు అపరిమిత కాల్స్.",
	},
	intent.DataUsage: {
		"en": "You've used 1.2GB of your 2GB daily quota. 800MB left until midnight.",
		"hi": "आपने 2GB दैनिक कोटे में से 1.2GB इस्तेमाल किया है। आधी रात तक 800MB बचा है।",
		"ta": "உங்கள் 2GB தினசரி அளவில் 1.2GB பயன்படுத்தியுள்ளீர்கள். நள்ளிரவு வரை 800MB உள்ளது.",
		"te": "మీ 2GB రోజువారీ కోటాలో 1.2GB వాడారు. అర్ధరాత్రి వరకు 800MB మిగిలి ఉంది.",
	},
	intent.Bill: {
		"en": "Your current bill is ₹399, due on the 5th. Shall I set up a payment reminder?",
		"hi": "आपका वर्तमान बिल ₹399 है, 5 तारीख तक देय। क्या मैं भुगतान रिमाइंडर सेट करूँ?",
		"ta": "உங்கள் தற்போதைய பில் ₹399, 5ஆம் தேதிக்குள் செலுத்த வேண்டும். கட்டண நினைவூட்டல் அமைக்கவா?",
		"te": "మీ ప్రస్తుత బిల్లు ₹399, 5వ తేదీలోపు చెల్లించాలి. చెల్లింపు రిమైండర్ పెట్టమంటారా?",
	},
	intent.Network: {
		"en": "I see temporary congestion on a tower near you. Speeds should recover within the hour; switching to 4G-only mode can help meanwhile.",
		"hi": "आपके पास के टावर पर अस्थायी भीड़ दिख रही है। एक घंटे में स्पीड ठीक हो जानी चाहिए; तब तक 4G-only मोड मदद कर सकता है।",
		"ta": "உங்கள் அருகிலுள்ள டவரில் தற்காலிக நெரிசல் உள்ளது. ஒரு மணி நேரத்தில் வேகம் சீராகும்; அதுவரை 4G-only பயன்முறை உதவும்.",
		"te": "మీ దగ్గరి టవర్‌లో తాత్కాలిక రద్దీ ఉంది. గంటలో వేగం సర్దుకుంటుంది; అప్పటివరకు 4G-only మోడ్ సహాయపడుతుంది.",
	},
	intent.Roaming: {
		"en": "For international roaming, the Traveller 2999 pack covers 10 days with 1GB/day and 100 minutes. Want me to activate it?",
		"hi": "अंतरराष्ट्रीय रोमिंग के लिए ट्रैवलर 2999 पैक में 10 दिन, 1GB/दिन और 100 मिनट मिलते हैं। क्या इसे सक्रिय करूँ?",
		"ta": "வெளிநாட்டு ரோமிங்கிற்கு டிராவலர் 2999 பேக்கில் 10 நாட்கள், 1GB/நாள், 100 நிமிடங்கள். செயல்படுத்தவா?",
		"te": "అంతర్జాతీయ రోమింగ్ కోసం ట్రావెలర్ 2999 ప్యాక్‌లో 10 రోజులు, 1GB/రోజు, 100 నిమిషాలు. యాక్టివేట్ చేయమంటారా?",
	},
	intent.Support: {
		"en": "I'm connecting you with a customer care specialist. They'll call you back on this number within 15 minutes.",
		"hi": "मैं आपको ग्राहक सेवा विशेषज्ञ से जोड़ रही हूँ। वे 15 मिनट के अंदर इसी नंबर पर कॉल करेंगे।",
		"ta": "உங்களை வாடிக்கையாளர் சேவை நிபுணருடன் இணைக்கிறேன். 15 நிமிடங்களுக்குள் இந்த எண்ணில் அழைப்பார்கள்.",
		"te": "మిమ్మల్ని కస్టమర్ కేర్ నిపుణుడితో కలుపుతున్నాను. 15 నిమిషాల్లో ఈ నంబర్‌కు కాల్ చేస్తారు.",
	},
	intent.Unknown: {
		"en": "I'm not sure I understood that. You can ask me about your balance, recharges, plans, data usage or bills.",
		"hi": "मैं ठीक से समझ नहीं पाई। आप मुझसे बैलेंस, रिचार्ज, प्लान, डेटा उपयोग या बिल के बारे में पूछ सकते हैं।",
		"ta": "எனக்கு சரியாக புரியவில்லை. இருப்பு, ரீசார்ஜ், திட்டங்கள், டேட்டா பயன்பாடு அல்லது பில் பற்றி கேட்கலாம்.",
		"te": "నాకు సరిగ్గా అర్థం కాలేదు. బ్యాలెన్స్, రీఛార్జ్, ప్లాన్‌లు, డేటా వినియోగం లేదా బిల్లుల గురించి అడగవచ్చు.",
	},
}

// containedIntents marks which intents the assistant resolves without
// a human handoff. Network issues and explicit support requests are
// never counted as contained.
var containedIntents = map[intent.Label]bool{
	intent.Greeting:  true,
	intent.Balance:   true,
	intent.Recharge:  true,
	intent.Plan:      true,
	intent.DataUsage: true,
	intent.Bill:      true,
	intent.Roaming:   true,
}

// Per-turn serving cost in USD, reported so the widget can accumulate
// session spend. Model-assisted turns cost more than canned ones.
const (
	costCanned   = 0.01
	costResolved = 0.02
	costAssisted = 0.04
)

func replyFor(label intent.Label, language string) string {
	replies, ok := replyTable[label]
	if !ok {
		replies = replyTable[intent.Unknown]
	}
	if text, ok := replies[language]; ok {
		return text
	}
	return replies["en"]
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	var req backend.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		utils.RespondError(w, http.StatusBadRequest, "query is required")
		return
	}

	client := strings.TrimSpace(req.CustomerID)
	if client == "" {
		client = r.RemoteAddr
	}
	if !s.limiter.Allow(client) {
		utils.RespondError(w, http.StatusTooManyRequests, "rate limit exceeded, slow down")
		return
	}

	language := normalizeLanguage(req.Language)
	decision := intent.Classify(req.Query)
	text := replyFor(decision.Intent, language)

	cost := costCanned
	if decision.Known() {
		cost = costResolved
	}

	if s.assist != nil && decision.Known() {
		rewritten, err := s.assist.Rewrite(r.Context(), req.Query, text, language)
		if err != nil {
			s.log.Warn().Err(err).Str("intent", string(decision.Intent)).Msg("assist rewrite failed, serving canned reply")
		} else if rewritten != "" {
			text = rewritten
			cost = costAssisted
		}
	}

	s.log.Info().
		Str("intent", string(decision.Intent)).
		Str("language", language).
		Float64("confidence", decision.Confidence).
		Msg("query answered")

	utils.RespondJSON(w, http.StatusOK, backend.QueryResponse{
		Status: "success",
		Response: backend.ReplyPayload{
			Text:       text,
			Intent:     string(decision.Intent),
			Confidence: decision.Confidence,
		},
		Metrics: backend.TurnMetrics{
			ProcessingTimeSeconds: time.Since(started).Seconds(),
			IntentConfidence:      decision.Confidence,
			Containment:           containedIntents[decision.Intent],
			CostUSD:               cost,
		},
	})
}
