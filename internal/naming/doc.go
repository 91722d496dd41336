// Package naming turns raw vehicle directory names into structured
// identities.
//
// Directory names follow <make>_[race#_]<model>[_variant...]_<year>, e.g.
// "por_carrera_gt3_rs_2019" or "for_12_gt_2017". A numeric second segment
// is always the race number, so "por_911_gt3_rs_2019" is car #911, model
// "Gt3", variant "Rs". The parser strips the "_slod"
// quality marker, consults the override table for names that break the
// convention, and otherwise parses positionally. Parsing never fails:
// anything it cannot resolve becomes [Unknown].
//
// Two-digit years are expanded with a pivot on the current year, so "25"
// means 1925 until the clock reaches 2025. This misreads cars from the
// 1920s once the pivot passes them; it is a known limitation of the naming
// convention, not something the parser tries to correct.
package naming
