package jiraquery

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// Issue is a single Jira issue. The interesting content lives in Fields;
// the top level is identity and API bookkeeping.
type Issue struct {
	ID     string `json:"id"`
	Key    string `json:"key"`
	Expand string `json:"expand"`
	Self   string `json:"self"`
	Fields Fields `json:"fields"`
}

// issueSchema sheds Issue's methods so decoding inside UnmarshalJSON does not
// recurse.
type issueSchema Issue

// UnmarshalJSON rejects payloads that are not issues at all (no key, no
// fields object) before the regular decode.
func (i *Issue) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, key := range []string{"key", "fields"} {
		if _, ok := raw[key]; !ok {
			return fmt.Errorf("issue: missing mandatory field %q", key)
		}
	}

	var typed issueSchema
	if err := json.Unmarshal(data, &typed); err != nil {
		return err
	}
	*i = Issue(typed)
	return nil
}

// Fields is everything Jira nests under "fields": the issue content. Go
// names are spelled out, the json tags mirror Jira's own keys exactly
// (issuetype, fixVersions, lastViewed, ...).
//
// Pointer fields are the ones Jira omits or nulls on some issues. Keys the
// typed schema does not cover, which includes every customfield_*, survive
// raw in Extra.
type Fields struct {
	Summary     string   `json:"summary"`
	Description *string  `json:"description"`
	Environment *string  `json:"environment"`
	Labels      []string `json:"labels"`

	Type     IssueType `json:"issuetype"`
	Project  Project   `json:"project"`
	Status   Status    `json:"status"`
	Priority *Priority `json:"priority"`

	Assignee *User `json:"assignee"`
	Reporter User  `json:"reporter"`
	Creator  User  `json:"creator"`

	Created    Time  `json:"created"`
	Updated    Time  `json:"updated"`
	LastViewed *Time `json:"lastViewed"`
	DueDate    *Date `json:"duedate"`

	Resolution     *Resolution `json:"resolution"`
	ResolutionDate *Time       `json:"resolutiondate"`
	ArchivedDate   *Time       `json:"archiveddate"`
	ArchivedBy     *User       `json:"archivedby"`

	// versions and fixVersions may be missing or an empty list; both cases
	// decode to an empty slice.
	Versions    []Version `json:"versions"`
	FixVersions []Version `json:"fixVersions"`

	TimeSpent                     *int `json:"timespent"`
	TimeEstimate                  *int `json:"timeestimate"`
	TimeOriginalEstimate          *int `json:"timeoriginalestimate"`
	AggregateTimeSpent            *int `json:"aggregatetimespent"`
	AggregateTimeEstimate         *int `json:"aggregatetimeestimate"`
	AggregateTimeOriginalEstimate *int `json:"aggregatetimeoriginalestimate"`

	Progress          Progress `json:"progress"`
	AggregateProgress Progress `json:"aggregateprogress"`
	WorkRatio         int64    `json:"workratio"`

	Components []Component      `json:"components"`
	Watches    Watches          `json:"watches"`
	Votes      Votes            `json:"votes"`
	Comment    *Comments        `json:"comment"`
	IssueLinks []IssueLink      `json:"issuelinks"`
	Parent     *CondensedIssue  `json:"parent"`
	Subtasks   []CondensedIssue `json:"subtasks"`
	Security   *Security        `json:"security"`

	// Extra holds every key under "fields" that the schema above does not,
	// verbatim.
	Extra map[string]json.RawMessage `json:"-"`
}

// mandatoryFields are the keys Jira includes for every issue regardless of
// configuration. A payload without one of them is treated as schema drift
// and rejected.
var mandatoryFields = []string{
	"summary", "status", "created", "updated", "issuetype", "project",
	"reporter", "creator", "progress", "aggregateprogress", "workratio",
	"watches", "votes", "labels", "components", "issuelinks", "subtasks",
}

// fieldsSchema sheds Fields' methods for the inner decode.
type fieldsSchema Fields

// fieldsKeys is every json key the typed schema covers.
var fieldsKeys = jsonKeys(reflect.TypeOf(Fields{}))

// UnmarshalJSON enforces the mandatory keys, decodes the typed schema and
// collects the rest into Extra.
func (f *Fields) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, key := range mandatoryFields {
		if _, ok := raw[key]; !ok {
			return fmt.Errorf("issue fields: missing mandatory field %q", key)
		}
	}

	var typed fieldsSchema
	if err := json.Unmarshal(data, &typed); err != nil {
		return err
	}
	*f = Fields(typed)

	for key := range fieldsKeys {
		delete(raw, key)
	}
	if len(raw) > 0 {
		f.Extra = raw
	}
	return nil
}

// jsonKeys collects the json tag names of a struct's fields.
func jsonKeys(t reflect.Type) map[string]struct{} {
	keys := make(map[string]struct{}, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if name != "" && name != "-" {
			keys[name] = struct{}{}
		}
	}
	return keys
}

// User is a Jira account. Jira Server and Data Center fill key and name;
// newer Cloud deployments identify users differently and may leave them
// empty.
type User struct {
	Self         string     `json:"self"`
	Key          string     `json:"key"`
	Name         string     `json:"name"`
	DisplayName  string     `json:"displayName"`
	EmailAddress *string    `json:"emailAddress"`
	Active       bool       `json:"active"`
	TimeZone     string     `json:"timeZone"`
	AvatarUrls   AvatarUrls `json:"avatarUrls"`
}

// Version is a product version an issue affects or fixes.
type Version struct {
	Self        string  `json:"self"`
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Archived    bool    `json:"archived"`
	Released    bool    `json:"released"`
	// Jira stores releaseDate as a bare YYYY-MM-DD.
	ReleaseDate *Date `json:"releaseDate"`
}

// Status is the workflow state of an issue.
type Status struct {
	Self           string         `json:"self"`
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Description    string         `json:"description"`
	IconURL        string         `json:"iconUrl"`
	StatusCategory StatusCategory `json:"statusCategory"`
}

// StatusCategory groups statuses into the To Do / In Progress / Done buckets.
type StatusCategory struct {
	Self      string `json:"self"`
	ID        int    `json:"id"`
	Key       string `json:"key"`
	Name      string `json:"name"`
	ColorName string `json:"colorName"`
}

// Resolution says how a closed issue was closed.
type Resolution struct {
	Self        string `json:"self"`
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// IssueType is the kind of an issue: Bug, Task, Epic and friends.
type IssueType struct {
	Self        string `json:"self"`
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IconURL     string `json:"iconUrl"`
	Subtask     bool   `json:"subtask"`
	AvatarID    *int   `json:"avatarId"`
}

// Project is the namespace an issue lives in.
type Project struct {
	Self            string           `json:"self"`
	ID              string           `json:"id"`
	Key             string           `json:"key"`
	Name            string           `json:"name"`
	ProjectTypeKey  string           `json:"projectTypeKey"`
	ProjectCategory *ProjectCategory `json:"projectCategory"`
	AvatarUrls      AvatarUrls       `json:"avatarUrls"`
}

// ProjectCategory is an administrative grouping of projects.
type ProjectCategory struct {
	Self        string `json:"self"`
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Priority is the urgency attached to an issue.
type Priority struct {
	Self    string `json:"self"`
	ID      string `json:"id"`
	Name    string `json:"name"`
	IconURL string `json:"iconUrl"`
}

// Component is a part of a project an issue is filed against.
type Component struct {
	Self        string  `json:"self"`
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// Watches counts the accounts watching an issue.
type Watches struct {
	Self       string `json:"self"`
	IsWatching bool   `json:"isWatching"`
	WatchCount int    `json:"watchCount"`
}

// Progress is time-tracking progress in seconds.
type Progress struct {
	Progress int `json:"progress"`
	Total    int `json:"total"`
}

// Comment is one comment below an issue.
type Comment struct {
	Self         string      `json:"self"`
	ID           string      `json:"id"`
	Author       User        `json:"author"`
	Body         string      `json:"body"`
	UpdateAuthor User        `json:"updateAuthor"`
	Created      Time        `json:"created"`
	Updated      Time        `json:"updated"`
	Visibility   *Visibility `json:"visibility"`
}

// Comments is the comment container on an issue, itself paginated by Jira.
type Comments struct {
	Comments   []Comment `json:"comments"`
	StartAt    int       `json:"startAt"`
	MaxResults int       `json:"maxResults"`
	Total      int       `json:"total"`
}

// IssueLink relates two issues. Exactly one of OutwardIssue and InwardIssue
// is set, depending on the direction of the link as seen from this issue.
type IssueLink struct {
	Self         string        `json:"self"`
	ID           string        `json:"id"`
	Type         IssueLinkType `json:"type"`
	OutwardIssue *LinkedIssue  `json:"outwardIssue"`
	InwardIssue  *LinkedIssue  `json:"inwardIssue"`
}

// LinkedIssue is the far end of an issue link.
type LinkedIssue struct {
	Self   string            `json:"self"`
	ID     string            `json:"id"`
	Key    string            `json:"key"`
	Fields LinkedIssueFields `json:"fields"`
}

// LinkedIssueFields is the reduced field set Jira sends for a linked issue.
type LinkedIssueFields struct {
	Summary  string    `json:"summary"`
	Type     IssueType `json:"issuetype"`
	Status   Status    `json:"status"`
	Priority *Priority `json:"priority"`
}

// IssueLinkType names both directions of a link relation.
type IssueLinkType struct {
	Self    string `json:"self"`
	ID      string `json:"id"`
	Name    string `json:"name"`
	Inward  string `json:"inward"`
	Outward string `json:"outward"`
}

// Votes counts the votes on an issue.
type Votes struct {
	Self     string `json:"self"`
	Votes    int    `json:"votes"`
	HasVoted bool   `json:"hasVoted"`
}

// AvatarUrls is one avatar in the sizes Jira renders.
type AvatarUrls struct {
	XSmall string `json:"16x16"`
	Small  string `json:"24x24"`
	Medium string `json:"32x32"`
	Full   string `json:"48x48"`
}

// CondensedIssue is the reduced representation Jira uses for parents and
// subtasks.
type CondensedIssue struct {
	Self   string          `json:"self"`
	ID     string          `json:"id"`
	Key    string          `json:"key"`
	Fields CondensedFields `json:"fields"`
}

// CondensedFields is the field subset of a CondensedIssue.
type CondensedFields struct {
	Summary  string    `json:"summary"`
	Type     IssueType `json:"issuetype"`
	Status   Status    `json:"status"`
	Priority *Priority `json:"priority"`
}

// Visibility restricts a comment to a group or role.
type Visibility struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Security is the security level of an issue.
type Security struct {
	Self        string `json:"self"`
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// searchResult is one page of the search response envelope. Transient: the
// pagination loop consumes it and hands callers only the issues.
type searchResult struct {
	StartAt    int     `json:"startAt"`
	MaxResults int     `json:"maxResults"`
	Total      int     `json:"total"`
	Issues     []Issue `json:"issues"`
}
