package service

import "learning_points_backend/internal/model"

// ResolveLevel 取满足条件且 minPoints 最大的等级，不依赖配置的排列顺序
func ResolveLevel(levels []model.LevelThreshold, points int) model.LevelInfo {
	if len(levels) == 0 {
		return model.BeginnerLevel
	}

	var best, lowest *model.LevelThreshold
	for i := range levels {
		l := &levels[i]
		if lowest == nil || l.Level < lowest.Level {
			lowest = l
		}
		if l.MinPoints > points {
			continue
		}
		if best == nil || l.MinPoints > best.MinPoints ||
			(l.MinPoints == best.MinPoints && l.Level > best.Level) {
			best = l
		}
	}
	if best == nil {
		return lowest.Info()
	}
	return best.Info()
}

// NextLevel 返回 minPoints 大于当前积分的最近一级，没有则 ok=false
func NextLevel(levels []model.LevelThreshold, points int) (next model.LevelInfo, ok bool) {
	var found *model.LevelThreshold
	for i := range levels {
		l := &levels[i]
		if l.MinPoints <= points {
			continue
		}
		if found == nil || l.MinPoints < found.MinPoints ||
			(l.MinPoints == found.MinPoints && l.Level < found.Level) {
			found = l
		}
	}
	if found == nil {
		return next, false
	}
	return found.Info(), true
}

func PointsForNextLevel(levels []model.LevelThreshold, points int) int {
	next, ok := NextLevel(levels, points)
	if !ok {
		return 0
	}
	return next.MinPoints - points
}
