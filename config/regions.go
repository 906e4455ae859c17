package config

import "github.com/eunseonJeong/life-planner-sub000/internal/models"

// SupportedRegions is the static administrative-district directory. Codes are
// the 5-digit LAWD_CD values used by the government transaction API.
var SupportedRegions = []models.Region{
	{Code: "11110", Province: "서울특별시", District: "종로구"},
	{Code: "11140", Province: "서울특별시", District: "중구"},
	{Code: "11170", Province: "서울특별시", District: "용산구"},
	{Code: "11200", Province: "서울특별시", District: "성동구"},
	{Code: "11215", Province: "서울특별시", District: "광진구"},
	{Code: "11230", Province: "서울특별시", District: "동대문구"},
	{Code: "11260", Province: "서울특별시", District: "중랑구"},
	{Code: "11290", Province: "서울특별시", District: "성북구"},
	{Code: "11305", Province: "서울특별시", District: "강북구"},
	{Code: "11320", Province: "서울특별시", District: "도봉구"},
	{Code: "11350", Province: "서울특별시", District: "노원구"},
	{Code: "11380", Province: "서울특별시", District: "은평구"},
	{Code: "11410", Province: "서울특별시", District: "서대문구"},
	{Code: "11440", Province: "서울특별시", District: "마포구"},
	{Code: "11470", Province: "서울특별시", District: "양천구"},
	{Code: "11500", Province: "서울특별시", District: "강서구"},
	{Code: "11530", Province: "서울특별시", District: "구로구"},
	{Code: "11545", Province: "서울특별시", District: "금천구"},
	{Code: "11560", Province: "서울특별시", District: "영등포구"},
	{Code: "11590", Province: "서울특별시", District: "동작구"},
	{Code: "11620", Province: "서울특별시", District: "관악구"},
	{Code: "11650", Province: "서울특별시", District: "서초구"},
	{Code: "11680", Province: "서울특별시", District: "강남구"},
	{Code: "11710", Province: "서울특별시", District: "송파구"},
	{Code: "11740", Province: "서울특별시", District: "강동구"},
	{Code: "26350", Province: "부산광역시", District: "해운대구"},
	{Code: "28185", Province: "인천광역시", District: "연수구"},
	{Code: "36110", Province: "세종특별자치시", District: "세종시"},
	{Code: "41135", Province: "경기도", District: "성남시 분당구"},
	{Code: "41290", Province: "경기도", District: "과천시"},
	// Add more districts here as needed
}

// AllRegions returns the directory with the composite display name filled in.
func AllRegions() []models.Region {
	regions := make([]models.Region, len(SupportedRegions))
	for i, r := range SupportedRegions {
		r.Name = r.Province + " " + r.District
		regions[i] = r
	}
	return regions
}

// RegionByCode returns the region for an administrative code, or nil when the
// code is not in the directory.
func RegionByCode(code string) *models.Region {
	for _, r := range SupportedRegions {
		if r.Code == code {
			r.Name = r.Province + " " + r.District
			return &r
		}
	}
	return nil
}

// RegionName returns the composite display name for a code, or an empty
// string for unknown codes.
func RegionName(code string) string {
	if r := RegionByCode(code); r != nil {
		return r.Name
	}
	return ""
}
