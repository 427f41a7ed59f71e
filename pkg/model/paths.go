package model

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// descriptor files (object metadata)
	versionDescriptorFile = "version.yaml"
	branchDescriptorFile  = "branch.yaml"
	tagDescriptorFile     = "tag.yaml"
	engineStateFile       = "engine.yaml"
	payloadFile           = "payload.json"
)

// version numbers are zero-padded so keys list in commit order
func versionKey(version uint64) string {
	return fmt.Sprintf("%020d", version)
}

func getArchivePathToVersions() string {
	return "versions/"
}

func getArchivePathToBranches() string {
	return "branches/"
}

func getArchivePathToTags() string {
	return "tags/"
}

// GetArchivePathToVersion yields the metadata path to a version descriptor
func GetArchivePathToVersion(version uint64) string {
	return fmt.Sprint(getArchivePathToVersions(), versionKey(version), "/", versionDescriptorFile)
}

// GetArchivePathPrefixToVersions yields the prefix under which all version descriptors live
func GetArchivePathPrefixToVersions() string {
	return getArchivePathToVersions()
}

// GetArchivePathToPayload yields the payload-store path to a version's snapshot document
func GetArchivePathToPayload(version uint64) string {
	return fmt.Sprint("payloads/", versionKey(version), "/", payloadFile)
}

// GetArchivePathToBranch yields the metadata path to a branch descriptor
func GetArchivePathToBranch(name string) string {
	return fmt.Sprint(getArchivePathToBranches(), name, "/", branchDescriptorFile)
}

// GetArchivePathPrefixToBranches yields the prefix under which all branch descriptors live
func GetArchivePathPrefixToBranches() string {
	return getArchivePathToBranches()
}

// GetArchivePathToTag yields the metadata path to a tag descriptor
func GetArchivePathToTag(name string) string {
	return fmt.Sprint(getArchivePathToTags(), name, "/", tagDescriptorFile)
}

// GetArchivePathPrefixToTags yields the prefix under which all tag descriptors live
func GetArchivePathPrefixToTags() string {
	return getArchivePathToTags()
}

// GetArchivePathToEngineState yields the metadata path to the engine state record
func GetArchivePathToEngineState() string {
	return fmt.Sprint("state/", engineStateFile)
}

// ArchivePathComponents defines the unique path parts of an archived object
type ArchivePathComponents struct {
	Version         uint64
	BranchName      string
	TagName         string
	ArchiveFileName string
	IsEngineState   bool
}

// GetArchivePathComponents yields all metadata components from a parsed archive path.
func GetArchivePathComponents(archivePath string) (ArchivePathComponents, error) {
	const expectParts = 3
	cs := strings.SplitN(archivePath, "/", expectParts)
	if len(cs) < 2 {
		return ArchivePathComponents{}, fmt.Errorf("path is invalid: %s", archivePath)
	}
	switch cs[0] { // we always have at least 1 element

	case "versions", "payloads":
		if len(cs) < expectParts {
			return ArchivePathComponents{}, fmt.Errorf("path is invalid: expect path to version to have %d parts: %s", expectParts, archivePath)
		}
		version, err := strconv.ParseUint(cs[1], 10, 64)
		if err != nil {
			return ArchivePathComponents{}, fmt.Errorf("path is invalid: %q is not a version number: %s", cs[1], archivePath)
		}
		return ArchivePathComponents{
			Version:         version,
			ArchiveFileName: cs[2],
		}, nil

	case "branches":
		if len(cs) < expectParts || cs[2] != branchDescriptorFile {
			return ArchivePathComponents{}, fmt.Errorf("path is invalid: expect path to branch to end with %q: %s", branchDescriptorFile, archivePath)
		}
		return ArchivePathComponents{
			BranchName:      cs[1],
			ArchiveFileName: cs[2],
		}, nil

	case "tags":
		if len(cs) < expectParts || cs[2] != tagDescriptorFile {
			return ArchivePathComponents{}, fmt.Errorf("path is invalid: expect path to tag to end with %q: %s", tagDescriptorFile, archivePath)
		}
		return ArchivePathComponents{
			TagName:         cs[1],
			ArchiveFileName: cs[2],
		}, nil

	case "state":
		if cs[1] != engineStateFile {
			return ArchivePathComponents{}, fmt.Errorf("path is invalid: expect path to engine state to end with %q: %s", engineStateFile, archivePath)
		}
		return ArchivePathComponents{
			ArchiveFileName: cs[1],
			IsEngineState:   true,
		}, nil

	default:
		return ArchivePathComponents{}, fmt.Errorf("path is invalid: unknown prefix %q: %s", cs[0], archivePath)
	}
}
