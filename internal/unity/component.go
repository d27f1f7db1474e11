package unity

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Component is an optional installable unit of an editor release.
//
// The numeric value of each component is stable and is what gets persisted
// (installation manifests, JSON output). Values that are not known to this
// build decode to Unknown instead of failing.
type Component int

const (
	Android                               Component = 0
	Ios                                   Component = 1
	TvOs                                  Component = 2
	WebGl                                 Component = 3
	Linux                                 Component = 4
	Windows                               Component = 5
	WindowsMono                           Component = 6
	Editor                                Component = 7
	Mono                                  Component = 8
	VisualStudio                          Component = 9
	MonoDevelop                           Component = 10
	StandardAssets                        Component = 11
	Documentation                         Component = 12
	VisualStudioProfessionalUnityWorkload Component = 13
	VisualStudioEnterpriseUnityWorkload   Component = 14
	ExampleProject                        Component = 15
	Example                               Component = 16
	AndroidSdkNdkTools                    Component = 17
	AndroidSdkPlatforms                   Component = 18
	AndroidSdkPlatformTools               Component = 19
	AndroidSdkBuildTools                  Component = 20
	AndroidNdk                            Component = 21
	AndroidOpenJdk                        Component = 22
	AppleTV                               Component = 23
	LinuxMono                             Component = 24
	Mac                                   Component = 25
	MacIL2CPP                             Component = 26
	MacMono                               Component = 27
	Metro                                 Component = 28
	UwpIL2CPP                             Component = 29
	UwpNet                                Component = 30
	UniversalWindowsPlatform              Component = 31
	Samsungtv                             Component = 32
	SamsungTV                             Component = 33
	Tizen                                 Component = 34
	Vuforia                               Component = 35
	VuforiaAR                             Component = 36
	WindowsIL2CCP                         Component = 37
	Facebook                              Component = 38
	FacebookGames                         Component = 39
	FacebookGameRoom                      Component = 40
	Lumin                                 Component = 41

	Unknown Component = 1000
)

var ErrUnknownComponent = fmt.Errorf("unknown component")

var componentNames = map[Component]string{
	Android:                               "android",
	Ios:                                   "ios",
	TvOs:                                  "tvOs",
	WebGl:                                 "webGl",
	Linux:                                 "linux",
	Windows:                               "windows",
	WindowsMono:                           "windowsMono",
	Editor:                                "editor",
	Mono:                                  "mono",
	VisualStudio:                          "visualStudio",
	MonoDevelop:                           "monoDevelop",
	StandardAssets:                        "standardAssets",
	Documentation:                         "documentation",
	VisualStudioProfessionalUnityWorkload: "visualStudioProfessionalUnityWorkload",
	VisualStudioEnterpriseUnityWorkload:   "visualStudioEnterpriseUnityWorkload",
	ExampleProject:                        "exampleProject",
	Example:                               "example",
	AndroidSdkNdkTools:                    "androidSdkNdkTools",
	AndroidSdkPlatforms:                   "androidSdkPlatforms",
	AndroidSdkPlatformTools:               "androidSdkPlatformTools",
	AndroidSdkBuildTools:                  "androidSdkBuildTools",
	AndroidNdk:                            "androidNdk",
	AndroidOpenJdk:                        "androidOpenJdk",
	AppleTV:                               "appleTV",
	LinuxMono:                             "linuxMono",
	Mac:                                   "mac",
	MacIL2CPP:                             "macIL2CPP",
	MacMono:                               "macMono",
	Metro:                                 "metro",
	UwpIL2CPP:                             "uwpIL2CPP",
	UwpNet:                                "uwpNet",
	UniversalWindowsPlatform:              "universalWindowsPlatform",
	Samsungtv:                             "samsungtv",
	SamsungTV:                             "samsungTV",
	Tizen:                                 "tizen",
	Vuforia:                               "vuforia",
	VuforiaAR:                             "vuforiaAR",
	WindowsIL2CCP:                         "windowsIL2CCP",
	Facebook:                              "facebook",
	FacebookGames:                         "facebookGames",
	FacebookGameRoom:                      "facebookGameRoom",
	Lumin:                                 "lumin",
	Unknown:                               "unknown",
}

// names are matched case-sensitively first ("samsungtv" and "samsungTV"
// are two different ids), then case-insensitively
var componentsByName = func() map[string]Component {
	m := make(map[string]Component, len(componentNames))
	for c, name := range componentNames {
		m[name] = c
	}
	return m
}()

// AllComponents returns every known component except Unknown, ordered by id.
func AllComponents() []Component {
	all := make([]Component, 0, len(componentNames)-1)
	for c := Android; c <= Lumin; c++ {
		all = append(all, c)
	}
	return all
}

// ComponentFromID maps a persisted id back to a Component.
// Unrecognized ids yield Unknown.
func ComponentFromID(id int) Component {
	c := Component(id)
	if _, ok := componentNames[c]; !ok {
		return Unknown
	}
	return c
}

// ParseComponent parses a component name (or numeric id) given by a user.
//
// Unlike decoding, it reports unrecognized input as ErrUnknownComponent.
func ParseComponent(s string) (Component, error) {
	s = strings.TrimSpace(s)

	if c, ok := componentsByName[s]; ok && c != Unknown {
		return c, nil
	}
	for _, c := range AllComponents() {
		if strings.EqualFold(c.String(), s) {
			return c, nil
		}
	}
	if id, err := strconv.Atoi(s); err == nil {
		if c := ComponentFromID(id); c != Unknown {
			return c, nil
		}
	}

	return Unknown, fmt.Errorf("%w: %q", ErrUnknownComponent, s)
}

func (c Component) ID() int {
	return int(c)
}

func (c Component) IsKnown() bool {
	return ComponentFromID(int(c)) != Unknown
}

func (c Component) String() string {
	if name, ok := componentNames[c]; ok {
		return name
	}
	return componentNames[Unknown]
}

func (c Component) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText never fails: unknown names become Unknown.
func (c *Component) UnmarshalText(text []byte) error {
	parsed, err := ParseComponent(string(text))
	if err != nil {
		*c = Unknown
		return nil
	}
	*c = parsed
	return nil
}

func (c Component) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(c))
}

// UnmarshalJSON accepts the numeric id or the name.
// Unrecognized values become Unknown.
func (c *Component) UnmarshalJSON(data []byte) error {
	var id int
	if err := json.Unmarshal(data, &id); err == nil {
		*c = ComponentFromID(id)
		return nil
	}

	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("component must be a number or a string: %w", err)
	}
	return c.UnmarshalText([]byte(name))
}
