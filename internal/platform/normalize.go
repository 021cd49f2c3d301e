package platform

import "strings"

// archTable maps raw architecture identifiers to release-feed names.
var archTable = map[string]string{
	"x32":     "386",
	"x64":     "amd64",
	"x86_64":  "amd64",
	"i386":    "386",
	"i686":    "386",
	"aarch64": "arm64",
}

// osTable maps raw operating system identifiers to release-feed names.
var osTable = map[string]string{
	"win32": "windows",
}

// familyMap maps distribution names to their canonical family names.
var familyMap = map[string]string{
	"debian":   FamilyDebian,
	"ubuntu":   FamilyDebian,
	"rhel":     FamilyRHEL,
	"centos":   FamilyRHEL,
	"rocky":    FamilyRHEL,
	"fedora":   FamilyFedora,
	"suse":     FamilySUSE,
	"opensuse": FamilySUSE,
	"arch":     FamilyArch,
	"alpine":   FamilyAlpine,
}

// MapArch translates a raw architecture identifier. Unknown input is
// returned unchanged.
func MapArch(raw string) string {
	if mapped, ok := archTable[raw]; ok {
		return mapped
	}
	return raw
}

// MapOS translates a raw operating system identifier. Unknown input is
// returned unchanged.
func MapOS(raw string) string {
	if mapped, ok := osTable[raw]; ok {
		return mapped
	}
	return raw
}

func normalizePlatform(platform string) string {
	return strings.ToLower(strings.TrimSpace(platform))
}

func mapFamily(family string) string {
	if canonical, ok := familyMap[normalizePlatform(family)]; ok {
		return canonical
	}
	return FamilyUnknown
}
