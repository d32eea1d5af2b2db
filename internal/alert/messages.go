package alert

import "golang.org/x/text/language"

// catalog holds one language's alert strings. %-verbs are positional and
// identical across languages.
type catalog struct {
	headerSafe       string
	headerSuspicious string
	headerHigh       string
	scoreLine        string
	reasonsHeading   string
	districtReports  string
	districtTrending string
	warningPrefix    string
	cellConfirmed    string
	cellInvestigate  string
	adviceHigh       string
	adviceSuspicious string
	adviceSafe       string
	reducedNote      string
}

// supportedTags drives BCP-47 matching. The first entry is the fallback.
var supportedTags = []language.Tag{
	language.English,
	language.Hindi,
	language.Bengali,
	language.Tamil,
	language.Telugu,
}

var catalogs = map[language.Tag]catalog{
	language.English: {
		headerSafe:       "✅ Likely Safe",
		headerSuspicious: "⚠️ Suspicious",
		headerHigh:       "🚨 High Scam Probability",
		scoreLine:        "Risk score: %.0f/100",
		reasonsHeading:   "Why this was flagged:",
		districtReports:  "Reported %d times recently in %s.",
		districtTrending: "This scam is actively spreading in %s right now.",
		warningPrefix:    "Official warning: %s",
		cellConfirmed:    "The cyber cell has confirmed this scam.",
		cellInvestigate:  "The cyber cell is investigating this pattern.",
		adviceHigh:       "Do not click any links or share OTPs, passwords, or bank details. Report to your local cyber cell (dial 1930).",
		adviceSuspicious: "Be careful. Verify the sender through an official channel before acting.",
		adviceSafe:       "No strong scam signals found. Stay alert for requests involving money or OTPs.",
		reducedNote:      "Note: the message language could not be detected reliably, so this alert may be less accurate.",
	},
	language.Hindi: {
		headerSafe:       "✅ संभवतः सुरक्षित",
		headerSuspicious: "⚠️ संदिग्ध",
		headerHigh:       "🚨 धोखाधड़ी की उच्च संभावना",
		scoreLine:        "जोखिम स्कोर: %.0f/100",
		reasonsHeading:   "यह क्यों चिह्नित किया गया:",
		districtReports:  "हाल ही में %[2]s में %[1]d बार रिपोर्ट किया गया।",
		districtTrending: "यह धोखाधड़ी अभी %s में तेज़ी से फैल रही है।",
		warningPrefix:    "आधिकारिक चेतावनी: %s",
		cellConfirmed:    "साइबर सेल ने इस धोखाधड़ी की पुष्टि की है।",
		cellInvestigate:  "साइबर सेल इस पैटर्न की जांच कर रही है।",
		adviceHigh:       "किसी लिंक पर क्लिक न करें और OTP, पासवर्ड या बैंक विवरण साझा न करें। अपने स्थानीय साइबर सेल को रिपोर्ट करें (1930 डायल करें)।",
		adviceSuspicious: "सावधान रहें। कार्रवाई से पहले आधिकारिक माध्यम से भेजने वाले की पुष्टि करें।",
		adviceSafe:       "कोई प्रबल धोखाधड़ी संकेत नहीं मिला। पैसे या OTP से जुड़े अनुरोधों से सतर्क रहें।",
		reducedNote:      "नोट: संदेश की भाषा का विश्वसनीय रूप से पता नहीं चल सका, इसलिए यह चेतावनी कम सटीक हो सकती है।",
	},
	language.Bengali: {
		headerSafe:       "✅ সম্ভবত নিরাপদ",
		headerSuspicious: "⚠️ সন্দেহজনক",
		headerHigh:       "🚨 প্রতারণার উচ্চ সম্ভাবনা",
		scoreLine:        "ঝুঁকি স্কোর: %.0f/100",
		reasonsHeading:   "কেন এটি চিহ্নিত হয়েছে:",
		districtReports:  "সম্প্রতি %[2]s-এ %[1]d বার রিপোর্ট হয়েছে।",
		districtTrending: "এই প্রতারণা এখন %s-এ দ্রুত ছড়িয়ে পড়ছে।",
		warningPrefix:    "সরকারি সতর্কবার্তা: %s",
		cellConfirmed:    "সাইবার সেল এই প্রতারণা নিশ্চিত করেছে।",
		cellInvestigate:  "সাইবার সেল এই প্যাটার্নটি তদন্ত করছে।",
		adviceHigh:       "কোনো লিঙ্কে ক্লিক করবেন না এবং OTP, পাসওয়ার্ড বা ব্যাংকের তথ্য শেয়ার করবেন না। স্থানীয় সাইবার সেলে রিপোর্ট করুন (1930 ডায়াল করুন)।",
		adviceSuspicious: "সতর্ক থাকুন। পদক্ষেপ নেওয়ার আগে সরকারি মাধ্যমে প্রেরককে যাচাই করুন।",
		adviceSafe:       "কোনো জোরালো প্রতারণার সংকেত পাওয়া যায়নি। টাকা বা OTP সংক্রান্ত অনুরোধে সতর্ক থাকুন।",
		reducedNote:      "দ্রষ্টব্য: বার্তার ভাষা নির্ভরযোগ্যভাবে শনাক্ত করা যায়নি, তাই এই সতর্কবার্তা কম নির্ভুল হতে পারে।",
	},
	language.Tamil: {
		headerSafe:       "✅ பெரும்பாலும் பாதுகாப்பானது",
		headerSuspicious: "⚠️ சந்தேகத்திற்குரியது",
		headerHigh:       "🚨 மோசடிக்கான அதிக சாத்தியம்",
		scoreLine:        "அபாய மதிப்பெண்: %.0f/100",
		reasonsHeading:   "ஏன் இது குறிக்கப்பட்டது:",
		districtReports:  "சமீபத்தில் %[2]s-இல் %[1]d முறை புகாரளிக்கப்பட்டது.",
		districtTrending: "இந்த மோசடி இப்போது %s-இல் வேகமாகப் பரவுகிறது.",
		warningPrefix:    "அதிகாரப்பூர்வ எச்சரிக்கை: %s",
		cellConfirmed:    "சைபர் செல் இந்த மோசடியை உறுதிப்படுத்தியுள்ளது.",
		cellInvestigate:  "சைபர் செல் இந்த முறைபாட்டை விசாரித்து வருகிறது.",
		adviceHigh:       "எந்த இணைப்பையும் கிளிக் செய்யாதீர்கள்; OTP, கடவுச்சொல் அல்லது வங்கி விவரங்களைப் பகிராதீர்கள். உங்கள் உள்ளூர் சைபர் செல்லில் புகாரளிக்கவும் (1930 அழைக்கவும்).",
		adviceSuspicious: "எச்சரிக்கையாக இருங்கள். செயல்படும் முன் அதிகாரப்பூர்வ வழியில் அனுப்புநரை உறுதிப்படுத்தவும்.",
		adviceSafe:       "வலுவான மோசடி அறிகுறிகள் எதுவும் இல்லை. பணம் அல்லது OTP தொடர்பான கோரிக்கைகளில் விழிப்புடன் இருங்கள்.",
		reducedNote:      "குறிப்பு: செய்தியின் மொழியை நம்பகமாகக் கண்டறிய முடியவில்லை, எனவே இந்த எச்சரிக்கை துல்லியம் குறைவாக இருக்கலாம்.",
	},
	language.Telugu: {
		headerSafe:       "✅ బహుశా సురక్షితం",
		headerSuspicious: "⚠️ అనుమానాస్పదం",
		headerHigh:       "🚨 మోసానికి అధిక అవకాశం",
		scoreLine:        "ప్రమాద స్కోరు: %.0f/100",
		reasonsHeading:   "ఇది ఎందుకు గుర్తించబడింది:",
		districtReports:  "ఇటీవల %[2]s-లో %[1]d సార్లు నివేదించబడింది.",
		districtTrending: "ఈ మోసం ప్రస్తుతం %s-లో వేగంగా వ్యాపిస్తోంది.",
		warningPrefix:    "అధికారిక హెచ్చరిక: %s",
		cellConfirmed:    "సైబర్ సెల్ ఈ మోసాన్ని ధృవీకరించింది.",
		cellInvestigate:  "సైబర్ సెల్ ఈ నమూనాపై దర్యాప్తు చేస్తోంది.",
		adviceHigh:       "ఏ లింక్‌పైనా క్లిక్ చేయవద్దు; OTP, పాస్‌వర్డ్ లేదా బ్యాంక్ వివరాలు పంచుకోవద్దు. మీ స్థానిక సైబర్ సెల్‌కు ఫిర్యాదు చేయండి (1930 డయల్ చేయండి).",
		adviceSuspicious: "జాగ్రత్తగా ఉండండి. చర్య తీసుకునే ముందు అధికారిక మార్గంలో పంపినవారిని నిర్ధారించుకోండి.",
		adviceSafe:       "బలమైన మోసం సంకేతాలు కనిపించలేదు. డబ్బు లేదా OTP సంబంధిత అభ్యర్థనల పట్ల అప్రమత్తంగా ఉండండి.",
		reducedNote:      "గమనిక: సందేశ భాషను నమ్మదగినంతగా గుర్తించలేకపోయాం, కాబట్టి ఈ హెచ్చరిక తక్కువ కచ్చితంగా ఉండవచ్చు.",
	},
}
