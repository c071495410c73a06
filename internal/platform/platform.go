package platform

// Platform is the closed set of social networks the service knows about.
// Dispatch never branches on raw strings; handlers parse incoming platform
// names through Parse and everything downstream works with this type.
type Platform string

const (
	Facebook  Platform = "facebook"
	Instagram Platform = "instagram"
	LinkedIn  Platform = "linkedin"
	YouTube   Platform = "youtube"
	TikTok    Platform = "tiktok"
	Snapchat  Platform = "snapchat"
)

func All() []Platform {
	return []Platform{Facebook, Instagram, LinkedIn, YouTube, TikTok, Snapchat}
}

func Parse(s string) (Platform, bool) {
	switch Platform(s) {
	case Facebook, Instagram, LinkedIn, YouTube, TikTok, Snapchat:
		return Platform(s), true
	}
	return "", false
}

func (p Platform) String() string {
	return string(p)
}

// Automation says whether a platform can be posted to by the service at all.
type Automation string

const (
	AutomationAuto         Automation = "auto"
	AutomationManual       Automation = "manual"
	AutomationOrganizeOnly Automation = "organize-only"
)

// Capability is static per-platform metadata. The table is never mutated at
// runtime.
type Capability struct {
	Automation    Automation
	MaxCaptionLen int
	MaxMediaItems int
	RequiresMedia bool
}

var capabilities = map[Platform]Capability{
	Facebook:  {Automation: AutomationAuto, MaxCaptionLen: 63206, MaxMediaItems: 10},
	Instagram: {Automation: AutomationAuto, MaxCaptionLen: 2200, MaxMediaItems: 10, RequiresMedia: true},
	LinkedIn:  {Automation: AutomationAuto, MaxCaptionLen: 3000, MaxMediaItems: 9},
	YouTube:   {Automation: AutomationAuto, MaxCaptionLen: 5000, MaxMediaItems: 1, RequiresMedia: true},
	TikTok:    {Automation: AutomationOrganizeOnly, MaxCaptionLen: 2200, MaxMediaItems: 1, RequiresMedia: true},
	Snapchat:  {Automation: AutomationManual, MaxCaptionLen: 250, MaxMediaItems: 1, RequiresMedia: true},
}

func CapabilityOf(p Platform) (Capability, bool) {
	c, ok := capabilities[p]
	return c, ok
}
